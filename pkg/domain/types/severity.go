package types

import (
	"fmt"
	"strings"
)

// CVESeverity is the qualitative severity assigned by the vulnerability
// feed. Values match the NVD CVSS v3 base severity labels.
type CVESeverity string

const (
	CVESeverityLow      CVESeverity = "LOW"
	CVESeverityMedium   CVESeverity = "MEDIUM"
	CVESeverityHigh     CVESeverity = "HIGH"
	CVESeverityCritical CVESeverity = "CRITICAL"
)

// AllCVESeverities returns all valid CVE severities
func AllCVESeverities() []CVESeverity {
	return []CVESeverity{
		CVESeverityLow,
		CVESeverityMedium,
		CVESeverityHigh,
		CVESeverityCritical,
	}
}

// IsValid checks if the CVE severity is valid
func (s CVESeverity) IsValid() bool {
	switch s {
	case CVESeverityLow, CVESeverityMedium, CVESeverityHigh, CVESeverityCritical:
		return true
	default:
		return false
	}
}

// String returns the string representation of the CVE severity
func (s CVESeverity) String() string {
	return string(s)
}

// ParseCVESeverity parses a string into a CVESeverity, case-insensitively
// (feeds are inconsistent about casing)
func ParseCVESeverity(s string) (CVESeverity, error) {
	sev := CVESeverity(strings.ToUpper(s))
	if !sev.IsValid() {
		return "", fmt.Errorf("invalid CVE severity: %s", s)
	}
	return sev, nil
}
