package types

import "fmt"

// ThreatType classifies a threat per the MAGERIT v3.0 threat catalog
type ThreatType string

const (
	ThreatTypeNaturalDisaster    ThreatType = "natural_disaster"
	ThreatTypeTechnicalFailure   ThreatType = "technical_failure"
	ThreatTypeServiceFailure     ThreatType = "service_failure"
	ThreatTypeUnintentionalError ThreatType = "unintentional_error"
	ThreatTypeIntentionalAttack  ThreatType = "intentional_attack"
)

// AllThreatTypes returns all valid threat types
func AllThreatTypes() []ThreatType {
	return []ThreatType{
		ThreatTypeNaturalDisaster,
		ThreatTypeTechnicalFailure,
		ThreatTypeServiceFailure,
		ThreatTypeUnintentionalError,
		ThreatTypeIntentionalAttack,
	}
}

// IsValid checks if the threat type is valid
func (t ThreatType) IsValid() bool {
	switch t {
	case ThreatTypeNaturalDisaster,
		ThreatTypeTechnicalFailure,
		ThreatTypeServiceFailure,
		ThreatTypeUnintentionalError,
		ThreatTypeIntentionalAttack:
		return true
	default:
		return false
	}
}

// String returns the string representation of the threat type
func (t ThreatType) String() string {
	return string(t)
}

// ParseThreatType parses a string into a ThreatType
func ParseThreatType(s string) (ThreatType, error) {
	t := ThreatType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid threat type: %s", s)
	}
	return t, nil
}

// ThreatOrigin identifies where a threat record came from
type ThreatOrigin string

const (
	ThreatOriginMagerit ThreatOrigin = "magerit"
	ThreatOriginCVE     ThreatOrigin = "cve"
	ThreatOriginManual  ThreatOrigin = "manual"
	ThreatOriginFeed    ThreatOrigin = "feed"
)

// IsValid checks if the threat origin is valid
func (o ThreatOrigin) IsValid() bool {
	switch o {
	case ThreatOriginMagerit, ThreatOriginCVE, ThreatOriginManual, ThreatOriginFeed:
		return true
	default:
		return false
	}
}

// Normalize returns the origin, treating empty as manual
func (o ThreatOrigin) Normalize() ThreatOrigin {
	if o == "" {
		return ThreatOriginManual
	}
	return o
}

// String returns the string representation of the threat origin
func (o ThreatOrigin) String() string {
	return string(o)
}
