package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// Valuation holds the five MAGERIT valuation dimensions of an asset.
// Each dimension is scored 0 (irrelevant) to 10 (critical).
type Valuation struct {
	Confidentiality float64
	Integrity       float64
	Availability    float64
	Authenticity    float64
	Traceability    float64
}

// Validate checks that every dimension is within [0, 10]
func (v Valuation) Validate() error {
	dims := map[string]float64{
		"confidentiality": v.Confidentiality,
		"integrity":       v.Integrity,
		"availability":    v.Availability,
		"authenticity":    v.Authenticity,
		"traceability":    v.Traceability,
	}
	for name, score := range dims {
		if score < 0 || score > 10 {
			return goerr.Wrap(ErrValidation, "valuation dimension out of range",
				goerr.V("dimension", name), goerr.V("score", score))
		}
	}
	return nil
}

// Criticality derives the asset criticality from a valuation: the maximum
// of the five dimensions. Kept as a pure function over the valuation so it
// never depends on how the asset is stored.
func Criticality(v Valuation) float64 {
	max := v.Confidentiality
	for _, score := range []float64{v.Integrity, v.Availability, v.Authenticity, v.Traceability} {
		if score > max {
			max = score
		}
	}
	return max
}

// Asset represents an information asset in the MAGERIT inventory
type Asset struct {
	ID            types.AssetID
	Name          string
	Type          types.AssetType
	Owner         string
	Custodian     string
	Location      string
	Valuation     Valuation
	EconomicValue float64

	// Dependencies are weak references to other assets this asset relies
	// on. The asset does not own them; it only blocks their deletion.
	Dependencies []types.AssetID
	Services     []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Criticality returns the derived criticality of the asset
func (a *Asset) Criticality() float64 {
	return Criticality(a.Valuation)
}

// Validate checks the asset invariants before persistence
func (a *Asset) Validate() error {
	if err := a.ID.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, "invalid asset ID", goerr.V("id", a.ID))
	}
	if a.Name == "" {
		return goerr.Wrap(ErrValidation, "asset name is required", goerr.V("id", a.ID))
	}
	if !a.Type.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid asset type",
			goerr.V("id", a.ID), goerr.V("type", a.Type))
	}
	if a.EconomicValue < 0 {
		return goerr.Wrap(ErrValidation, "economic value must be non-negative",
			goerr.V("id", a.ID), goerr.V("value", a.EconomicValue))
	}
	if err := a.Valuation.Validate(); err != nil {
		return goerr.Wrap(err, "invalid asset valuation", goerr.V("id", a.ID))
	}
	for _, dep := range a.Dependencies {
		if dep == a.ID {
			return goerr.Wrap(ErrValidation, "asset cannot depend on itself", goerr.V("id", a.ID))
		}
	}
	return nil
}

// DependsOn reports whether the asset lists dep among its dependencies
func (a *Asset) DependsOn(dep types.AssetID) bool {
	for _, d := range a.Dependencies {
		if d == dep {
			return true
		}
	}
	return false
}
