package types

import "fmt"

// VulnerabilityState tracks the treatment lifecycle of a vulnerability
type VulnerabilityState string

const (
	VulnerabilityStateOpen        VulnerabilityState = "open"
	VulnerabilityStateMitigated   VulnerabilityState = "mitigated"
	VulnerabilityStateAccepted    VulnerabilityState = "accepted"
	VulnerabilityStateInTreatment VulnerabilityState = "in_treatment"
)

// IsValid checks if the vulnerability state is valid
func (s VulnerabilityState) IsValid() bool {
	switch s {
	case VulnerabilityStateOpen,
		VulnerabilityStateMitigated,
		VulnerabilityStateAccepted,
		VulnerabilityStateInTreatment:
		return true
	default:
		return false
	}
}

// Normalize returns the state, treating empty as open
func (s VulnerabilityState) Normalize() VulnerabilityState {
	if s == "" {
		return VulnerabilityStateOpen
	}
	return s
}

// String returns the string representation of the vulnerability state
func (s VulnerabilityState) String() string {
	return string(s)
}

// ParseVulnerabilityState parses a string into a VulnerabilityState
func ParseVulnerabilityState(s string) (VulnerabilityState, error) {
	state := VulnerabilityState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid vulnerability state: %s", s)
	}
	return state, nil
}
