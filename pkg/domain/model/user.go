package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"golang.org/x/crypto/bcrypt"
)

// User is a platform account. Authentication flows live outside the core;
// the model only guarantees credentials are never stored in clear text.
type User struct {
	Email        string
	PasswordHash string
	Name         string
	Role         types.UserRole
	Active       bool
	LastAccessAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the user invariants before persistence
func (u *User) Validate() error {
	if u.Email == "" {
		return goerr.Wrap(ErrValidation, "user email is required")
	}
	if !u.Role.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid user role",
			goerr.V("email", u.Email), goerr.V("role", u.Role))
	}
	return nil
}

// SetPassword hashes and stores the credential
func (u *User) SetPassword(plain string) error {
	if len(plain) < 8 {
		return goerr.Wrap(ErrValidation, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return goerr.Wrap(err, "failed to hash password")
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword checks a candidate credential against the stored hash
func (u *User) VerifyPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
