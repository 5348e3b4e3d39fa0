package types

import "fmt"

// UserRole is the access role of a platform user
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleAuditor  UserRole = "auditor"
	UserRoleOperator UserRole = "operator"
	UserRoleReadOnly UserRole = "read_only"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleAuditor, UserRoleOperator, UserRoleReadOnly:
		return true
	default:
		return false
	}
}

// String returns the string representation of the user role
func (r UserRole) String() string {
	return string(r)
}

// ParseUserRole parses a string into a UserRole
func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid user role: %s", s)
	}
	return r, nil
}
