package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// RiskID is a UUID-based identifier for Risk records. The uniqueness
// invariant lives on the triple key, not the record ID.
type RiskID string

// NewRiskID generates a new UUID v4 RiskID
func NewRiskID() RiskID {
	return RiskID(uuid.New().String())
}

// String returns the string representation of RiskID
func (r RiskID) String() string {
	return string(r)
}

// Calculation is the breakdown produced by the risk calculator for one
// (asset, threat, vulnerability?) triple
type Calculation struct {
	// InherentRisk is the worst-case baseline: base probability times
	// maximum valuation impact, before exploit and temporal adjustment
	InherentRisk float64

	// AdjustedProbability is the base probability scaled by the exploit
	// factor and the temporal decay factor
	AdjustedProbability float64

	// ComputedImpact is the maximum valuation impact scaled by the
	// asset's economic value against the normalization anchor
	ComputedImpact float64

	// Exposure is AdjustedProbability * ComputedImpact; the level
	// classification applies to this value
	Exposure float64

	// TemporalFactor is the age-dependent weighting of the threat,
	// within [0.5, 1.0]
	TemporalFactor float64
}

// Risk is the computed risk record for one (asset, threat, vulnerability?)
// triple. At most one active record exists per distinct triple.
type Risk struct {
	ID RiskID

	AssetID  types.AssetID
	ThreatID types.ThreatID
	// VulnerabilityID is empty when the risk was computed without a
	// linked vulnerability
	VulnerabilityID types.VulnerabilityID

	Calculation Calculation

	// RiskValue is the monetary value-at-risk figure; top-N ordering and
	// KPI sums use this
	RiskValue float64
	// RiskLevel classifies the exposure into a discrete severity
	RiskLevel types.RiskLevel

	// Probability and Impact echo the adjusted inputs for reporting
	Probability float64
	Impact      float64

	CalculatedAt time.Time

	// Active marks the record as a live, current risk. Deletion flips it
	// to false instead of removing the document, preserving history.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TripleKey identifies the (asset, threat, vulnerability?) triple a risk
// record belongs to. Used as the storage key enforcing uniqueness.
type TripleKey string

// RiskTripleKey builds the deterministic key for a triple. A missing
// vulnerability is part of the identity, so (a,t) and (a,t,v) are
// distinct triples.
func RiskTripleKey(assetID types.AssetID, threatID types.ThreatID, vulnID types.VulnerabilityID) TripleKey {
	return TripleKey(strings.Join([]string{string(assetID), string(threatID), string(vulnID)}, "|"))
}

// Triple returns the key of the record's own triple
func (r *Risk) Triple() TripleKey {
	return RiskTripleKey(r.AssetID, r.ThreatID, r.VulnerabilityID)
}

// RiskMatrix groups active risks by level for the matrix view
type RiskMatrix struct {
	ByLevel map[types.RiskLevel][]*Risk
	Stats   MatrixStats
}

// MatrixStats summarizes a risk matrix
type MatrixStats struct {
	Total          int
	CountByLevel   map[types.RiskLevel]int
	TotalRiskValue float64
}

// DashboardStats holds the KPI figures for the dashboard view
type DashboardStats struct {
	ActiveRisks    int
	TotalRiskValue float64
	// MeanExposure is the average of probability*impact across active risks
	MeanExposure float64
	CountByLevel map[types.RiskLevel]int
}

// RecalcSummary is the outcome of a bulk recalculation. Per-record
// failures are counted, never propagated.
type RecalcSummary struct {
	Processed int
	Errors    int
}
