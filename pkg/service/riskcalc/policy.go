package riskcalc

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// Policy holds the tunable constants of the risk engine. None of these are
// laws of nature; they are organizational policy and can be overridden from
// the policy configuration file.
type Policy struct {
	// Level thresholds applied to the exposure score. Boundaries are
	// closed on the lower side: exposure >= CriticalThreshold is critical.
	CriticalThreshold float64
	HighThreshold     float64
	MediumThreshold   float64
	LowThreshold      float64

	// DefaultExploitFactor is used when a risk has no linked
	// vulnerability: a neutral midpoint representing generic,
	// unquantified exploitability.
	DefaultExploitFactor float64

	// EconomicAnchor normalizes asset economic value into the impact
	// scale. An asset worth exactly the anchor contributes its full
	// valuation score as impact.
	EconomicAnchor float64

	// SeverityProbability maps CVE feed severities to base threat
	// probabilities for ingested threats.
	SeverityProbability map[types.CVESeverity]float64
}

// DefaultPolicy returns the stock MAGERIT engine policy
func DefaultPolicy() Policy {
	return Policy{
		CriticalThreshold:    80,
		HighThreshold:        60,
		MediumThreshold:      40,
		LowThreshold:         20,
		DefaultExploitFactor: 0.5,
		EconomicAnchor:       100000,
		SeverityProbability: map[types.CVESeverity]float64{
			types.CVESeverityCritical: 9,
			types.CVESeverityHigh:     7,
			types.CVESeverityMedium:   5,
			types.CVESeverityLow:      3,
		},
	}
}

// Validate checks the policy is internally consistent
func (p Policy) Validate() error {
	if !(p.CriticalThreshold > p.HighThreshold &&
		p.HighThreshold > p.MediumThreshold &&
		p.MediumThreshold > p.LowThreshold &&
		p.LowThreshold > 0) {
		return goerr.New("risk level thresholds must be strictly decreasing and positive",
			goerr.V("critical", p.CriticalThreshold),
			goerr.V("high", p.HighThreshold),
			goerr.V("medium", p.MediumThreshold),
			goerr.V("low", p.LowThreshold))
	}
	if p.DefaultExploitFactor < 0 || p.DefaultExploitFactor > 1 {
		return goerr.New("default exploit factor must be within [0,1]",
			goerr.V("factor", p.DefaultExploitFactor))
	}
	if p.EconomicAnchor <= 0 {
		return goerr.New("economic anchor must be positive",
			goerr.V("anchor", p.EconomicAnchor))
	}
	for sev, prob := range p.SeverityProbability {
		if prob < 0 || prob > 10 {
			return goerr.New("severity probability out of range",
				goerr.V("severity", sev), goerr.V("probability", prob))
		}
	}
	return nil
}

// Classify maps an exposure score to its discrete risk level
func (p Policy) Classify(score float64) types.RiskLevel {
	switch {
	case score >= p.CriticalThreshold:
		return types.RiskLevelCritical
	case score >= p.HighThreshold:
		return types.RiskLevelHigh
	case score >= p.MediumThreshold:
		return types.RiskLevelMedium
	case score >= p.LowThreshold:
		return types.RiskLevelLow
	default:
		return types.RiskLevelVeryLow
	}
}

// ProbabilityForSeverity maps a CVE severity to a base threat probability.
// Unknown severities fall back to the medium mapping.
func (p Policy) ProbabilityForSeverity(sev types.CVESeverity) float64 {
	if prob, ok := p.SeverityProbability[sev]; ok {
		return prob
	}
	return p.SeverityProbability[types.CVESeverityMedium]
}
