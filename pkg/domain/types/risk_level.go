package types

import "fmt"

// RiskLevel is the discrete severity classification of a computed risk
type RiskLevel string

const (
	RiskLevelCritical RiskLevel = "critical"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelVeryLow  RiskLevel = "very_low"
)

// AllRiskLevels returns all risk levels, most severe first
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelCritical,
		RiskLevelHigh,
		RiskLevelMedium,
		RiskLevelLow,
		RiskLevelVeryLow,
	}
}

// IsValid checks if the risk level is valid
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelCritical, RiskLevelHigh, RiskLevelMedium, RiskLevelLow, RiskLevelVeryLow:
		return true
	default:
		return false
	}
}

// Rank returns an ordering value for the level, higher means more severe.
// Useful for sorting matrix rows.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLevelCritical:
		return 4
	case RiskLevelHigh:
		return 3
	case RiskLevelMedium:
		return 2
	case RiskLevelLow:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the risk level
func (l RiskLevel) String() string {
	return string(l)
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return l, nil
}
