package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// Vulnerability represents a weakness that makes one or more threats
// easier to materialize against the affected assets
type Vulnerability struct {
	ID          types.VulnerabilityID
	Name        string
	Category    string
	Description string

	// Exploitability scores how easy the weakness is to exploit, 0..10
	Exploitability float64
	AttackVectors  []string

	AssetIDs  []types.AssetID
	ThreatIDs []types.ThreatID

	State       types.VulnerabilityState
	DetectedAt  time.Time
	MitigatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the vulnerability invariants before persistence
func (v *Vulnerability) Validate() error {
	if err := v.ID.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, "invalid vulnerability ID", goerr.V("id", v.ID))
	}
	if v.Name == "" {
		return goerr.Wrap(ErrValidation, "vulnerability name is required", goerr.V("id", v.ID))
	}
	if v.Exploitability < 0 || v.Exploitability > 10 {
		return goerr.Wrap(ErrValidation, "exploitability out of range",
			goerr.V("id", v.ID), goerr.V("exploitability", v.Exploitability))
	}
	if !v.State.Normalize().IsValid() {
		return goerr.Wrap(ErrValidation, "invalid vulnerability state",
			goerr.V("id", v.ID), goerr.V("state", v.State))
	}
	if v.MitigatedAt != nil && v.MitigatedAt.Before(v.DetectedAt) {
		return goerr.Wrap(ErrValidation, "mitigation date precedes detection date",
			goerr.V("id", v.ID))
	}
	return nil
}
