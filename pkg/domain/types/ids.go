package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var codePattern = regexp.MustCompile(`^[a-zA-Z0-9]+([-_.][a-zA-Z0-9]+)*$`)

// AssetID is the unique code of an information asset (e.g. "srv-db-001")
type AssetID string

// Validate checks if the AssetID is a well-formed asset code
func (a AssetID) Validate() error {
	if a == "" {
		return goerr.New("asset ID cannot be empty")
	}
	if !codePattern.MatchString(string(a)) {
		return goerr.New("asset ID must be alphanumeric with separators", goerr.V("id", a))
	}
	return nil
}

// String returns the string representation of AssetID
func (a AssetID) String() string {
	return string(a)
}

// ThreatID is the unique code of a threat. Threats ingested from the CVE
// feed use the CVE identifier itself (e.g. "CVE-2024-12345").
type ThreatID string

// Validate checks if the ThreatID is a well-formed threat code
func (t ThreatID) Validate() error {
	if t == "" {
		return goerr.New("threat ID cannot be empty")
	}
	if !codePattern.MatchString(string(t)) {
		return goerr.New("threat ID must be alphanumeric with separators", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of ThreatID
func (t ThreatID) String() string {
	return string(t)
}

// VulnerabilityID is the unique code of a vulnerability record
type VulnerabilityID string

// Validate checks if the VulnerabilityID is a well-formed code
func (v VulnerabilityID) Validate() error {
	if v == "" {
		return goerr.New("vulnerability ID cannot be empty")
	}
	if !codePattern.MatchString(string(v)) {
		return goerr.New("vulnerability ID must be alphanumeric with separators", goerr.V("id", v))
	}
	return nil
}

// String returns the string representation of VulnerabilityID
func (v VulnerabilityID) String() string {
	return string(v)
}

// SafeguardID is the unique code of a safeguard/control
type SafeguardID string

// Validate checks if the SafeguardID is a well-formed code
func (s SafeguardID) Validate() error {
	if s == "" {
		return goerr.New("safeguard ID cannot be empty")
	}
	if !codePattern.MatchString(string(s)) {
		return goerr.New("safeguard ID must be alphanumeric with separators", goerr.V("id", s))
	}
	return nil
}

// String returns the string representation of SafeguardID
func (s SafeguardID) String() string {
	return string(s)
}
