package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// DocumentationEntry is a free-form documentation note attached to a
// safeguard (procedure links, audit evidence, vendor docs)
type DocumentationEntry struct {
	Title   string
	URL     string
	Note    string
	AddedAt time.Time
}

// KPIMeasurement is one point of a safeguard's effectiveness time series
type KPIMeasurement struct {
	Name       string
	Value      float64
	MeasuredAt time.Time
}

// Safeguard represents a control that mitigates one or more risks
type Safeguard struct {
	ID          types.SafeguardID
	Name        string
	Type        types.SafeguardType
	Category    string
	Description string
	State       types.SafeguardState

	// Effectiveness is the mitigation percentage, 0..100
	Effectiveness      float64
	ImplementationCost float64
	MonthlyCost        float64

	// RiskIDs are the risk records this safeguard protects
	RiskIDs []RiskID
	// AssetIDs are the assets this safeguard covers
	AssetIDs []types.AssetID

	Owner string
	// ReviewPeriodMonths is the review periodicity; with an
	// implementation date it determines the next review date
	ReviewPeriodMonths int

	ImplementedAt *time.Time
	NextReviewAt  *time.Time

	Documentation []DocumentationEntry
	KPIs          []KPIMeasurement

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the safeguard invariants before persistence
func (s *Safeguard) Validate() error {
	if err := s.ID.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, "invalid safeguard ID", goerr.V("id", s.ID))
	}
	if s.Name == "" {
		return goerr.Wrap(ErrValidation, "safeguard name is required", goerr.V("id", s.ID))
	}
	if !s.Type.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid safeguard type",
			goerr.V("id", s.ID), goerr.V("type", s.Type))
	}
	if !s.State.Normalize().IsValid() {
		return goerr.Wrap(ErrValidation, "invalid safeguard state",
			goerr.V("id", s.ID), goerr.V("state", s.State))
	}
	if s.Effectiveness < 0 || s.Effectiveness > 100 {
		return goerr.Wrap(ErrValidation, "effectiveness out of range",
			goerr.V("id", s.ID), goerr.V("effectiveness", s.Effectiveness))
	}
	if s.ImplementationCost < 0 || s.MonthlyCost < 0 {
		return goerr.Wrap(ErrValidation, "safeguard costs must be non-negative", goerr.V("id", s.ID))
	}
	if s.ReviewPeriodMonths < 0 {
		return goerr.Wrap(ErrValidation, "review period must be non-negative", goerr.V("id", s.ID))
	}
	return nil
}

// ScheduleNextReview derives the next review date once the safeguard is
// implemented: implementation date plus the review periodicity. Existing
// next-review dates are left untouched. Returns true when a date was set.
func (s *Safeguard) ScheduleNextReview() bool {
	if s.State != types.SafeguardStateImplemented {
		return false
	}
	if s.ImplementedAt == nil || s.NextReviewAt != nil || s.ReviewPeriodMonths <= 0 {
		return false
	}
	next := s.ImplementedAt.AddDate(0, s.ReviewPeriodMonths, 0)
	s.NextReviewAt = &next
	return true
}

// ResidualFactor returns the fraction of exposure left after the safeguard
// applies: 1 - effectiveness. Only implemented safeguards reduce exposure.
func (s *Safeguard) ResidualFactor() float64 {
	if s.State != types.SafeguardStateImplemented {
		return 1.0
	}
	return 1.0 - s.Effectiveness/100.0
}

// AnnualCost returns the total first-year cost of the safeguard
func (s *Safeguard) AnnualCost() float64 {
	return s.ImplementationCost + 12*s.MonthlyCost
}

// SafeguardROI derives the return-on-investment of a safeguard against the
// total risk value it protects: mitigated value minus annual cost, over
// annual cost. Pure over its inputs; reporting-only.
func SafeguardROI(s *Safeguard, protectedValue float64) float64 {
	cost := s.AnnualCost()
	if cost <= 0 {
		return 0
	}
	mitigated := protectedValue * (s.Effectiveness / 100.0)
	return (mitigated - cost) / cost
}
