package types

import "fmt"

// SafeguardType classifies the defensive function of a safeguard
type SafeguardType string

const (
	SafeguardTypePreventive   SafeguardType = "preventive"
	SafeguardTypeDetective    SafeguardType = "detective"
	SafeguardTypeCorrective   SafeguardType = "corrective"
	SafeguardTypeDeterrent    SafeguardType = "deterrent"
	SafeguardTypeCompensating SafeguardType = "compensating"
)

// IsValid checks if the safeguard type is valid
func (t SafeguardType) IsValid() bool {
	switch t {
	case SafeguardTypePreventive,
		SafeguardTypeDetective,
		SafeguardTypeCorrective,
		SafeguardTypeDeterrent,
		SafeguardTypeCompensating:
		return true
	default:
		return false
	}
}

// String returns the string representation of the safeguard type
func (t SafeguardType) String() string {
	return string(t)
}

// ParseSafeguardType parses a string into a SafeguardType
func ParseSafeguardType(s string) (SafeguardType, error) {
	t := SafeguardType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid safeguard type: %s", s)
	}
	return t, nil
}

// SafeguardState tracks the implementation lifecycle of a safeguard
type SafeguardState string

const (
	SafeguardStateProposed    SafeguardState = "proposed"
	SafeguardStatePlanned     SafeguardState = "planned"
	SafeguardStateInProgress  SafeguardState = "in_progress"
	SafeguardStateImplemented SafeguardState = "implemented"
	SafeguardStateObsolete    SafeguardState = "obsolete"
)

// IsValid checks if the safeguard state is valid
func (s SafeguardState) IsValid() bool {
	switch s {
	case SafeguardStateProposed,
		SafeguardStatePlanned,
		SafeguardStateInProgress,
		SafeguardStateImplemented,
		SafeguardStateObsolete:
		return true
	default:
		return false
	}
}

// Normalize returns the state, treating empty as proposed
func (s SafeguardState) Normalize() SafeguardState {
	if s == "" {
		return SafeguardStateProposed
	}
	return s
}

// String returns the string representation of the safeguard state
func (s SafeguardState) String() string {
	return string(s)
}

// ParseSafeguardState parses a string into a SafeguardState
func ParseSafeguardState(s string) (SafeguardState, error) {
	state := SafeguardState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid safeguard state: %s", s)
	}
	return state, nil
}
