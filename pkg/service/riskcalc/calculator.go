// Package riskcalc implements the MAGERIT risk quantification engine: a
// pure calculator that turns an asset, a threat and an optional
// vulnerability into a risk breakdown, a monetary value-at-risk figure and
// a discrete level. All time dependence goes through an explicit "now"
// parameter so calculations are deterministic and testable.
package riskcalc

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// Calculator evaluates risk triples under a fixed policy. Calculators are
// stateless and safe for concurrent use.
type Calculator struct {
	policy Policy
}

// New creates a Calculator with the given policy
func New(policy Policy) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk policy")
	}
	return &Calculator{policy: policy}, nil
}

// Policy returns the calculator's policy
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Calculate produces the risk breakdown for (asset, threat, vuln?) at the
// given instant. vuln may be nil; the policy's default exploit factor is
// used instead. No side effects.
func (c *Calculator) Calculate(asset *model.Asset, threat *model.Threat, vuln *model.Vulnerability, now time.Time) (*model.Calculation, error) {
	if asset == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "asset is required for risk calculation")
	}
	if threat == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "threat is required for risk calculation")
	}
	if err := asset.Valuation.Validate(); err != nil {
		return nil, goerr.Wrap(err, "asset valuation rejected", goerr.V("asset", asset.ID))
	}
	if asset.EconomicValue < 0 {
		return nil, goerr.Wrap(model.ErrValidation, "economic value must be non-negative",
			goerr.V("asset", asset.ID), goerr.V("value", asset.EconomicValue))
	}
	if threat.Probability < 0 || threat.Probability > 10 {
		return nil, goerr.Wrap(model.ErrValidation, "threat probability out of range",
			goerr.V("threat", threat.ID), goerr.V("probability", threat.Probability))
	}

	exploitFactor := c.policy.DefaultExploitFactor
	if vuln != nil {
		if vuln.Exploitability < 0 || vuln.Exploitability > 10 {
			return nil, goerr.Wrap(model.ErrValidation, "exploitability out of range",
				goerr.V("vulnerability", vuln.ID), goerr.V("exploitability", vuln.Exploitability))
		}
		exploitFactor = vuln.Exploitability / 10
	}

	impactMax := model.Criticality(asset.Valuation)
	temporalFactor := TemporalDecay(threat.DiscoveredAt, now)
	adjustedProbability := threat.Probability * exploitFactor * temporalFactor
	computedImpact := impactMax * (asset.EconomicValue / c.policy.EconomicAnchor)

	return &model.Calculation{
		InherentRisk:        threat.Probability * impactMax,
		AdjustedProbability: adjustedProbability,
		ComputedImpact:      computedImpact,
		Exposure:            adjustedProbability * computedImpact,
		TemporalFactor:      temporalFactor,
	}, nil
}

// Classify maps an exposure score to a risk level under the policy
func (c *Calculator) Classify(exposure float64) types.RiskLevel {
	return c.policy.Classify(exposure)
}

// ValueAtRisk derives the monetary value-at-risk figure from a calculation:
// the asset's economic value scaled by the adjusted probability and the
// computed impact, both normalized to [0,1]-ish factors.
func ValueAtRisk(economicValue float64, calc *model.Calculation) float64 {
	return economicValue * (calc.AdjustedProbability / 10) * (calc.ComputedImpact / 10)
}
