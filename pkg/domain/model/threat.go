package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// CVERecord carries the vulnerability-feed data attached to a threat
// sourced from a CVE database
type CVERecord struct {
	ID               string
	Score            float64 // CVSS base score, 0..10
	Severity         types.CVESeverity
	AffectedSoftware []string
	PublishedAt      time.Time
	ModifiedAt       time.Time
	Description      string
}

// Validate checks the CVE record ranges
func (c *CVERecord) Validate() error {
	if c.ID == "" {
		return goerr.Wrap(ErrValidation, "CVE ID is required")
	}
	if c.Score < 0 || c.Score > 10 {
		return goerr.Wrap(ErrValidation, "CVE score out of range",
			goerr.V("cve", c.ID), goerr.V("score", c.Score))
	}
	if !c.Severity.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid CVE severity",
			goerr.V("cve", c.ID), goerr.V("severity", c.Severity))
	}
	return nil
}

// Threat represents a threat from the MAGERIT catalog, the CVE feed, or
// manual registration. Threats ingested from the CVE feed use the CVE
// identifier as their ID so re-ingestion overwrites instead of duplicating.
type Threat struct {
	ID          types.ThreatID
	Name        string
	Type        types.ThreatType
	Origin      types.ThreatOrigin
	Description string

	// Probability is the base likelihood of the threat materializing,
	// scored 0..10 before any exploit or temporal adjustment.
	Probability float64
	CVE         *CVERecord

	// AssetIDs are weak references to the assets this threat applies to
	AssetIDs []types.AssetID

	DiscoveredAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the threat invariants before persistence
func (t *Threat) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, "invalid threat ID", goerr.V("id", t.ID))
	}
	if t.Name == "" {
		return goerr.Wrap(ErrValidation, "threat name is required", goerr.V("id", t.ID))
	}
	if !t.Type.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid threat type",
			goerr.V("id", t.ID), goerr.V("type", t.Type))
	}
	if !t.Origin.Normalize().IsValid() {
		return goerr.Wrap(ErrValidation, "invalid threat origin",
			goerr.V("id", t.ID), goerr.V("origin", t.Origin))
	}
	if t.Probability < 0 || t.Probability > 10 {
		return goerr.Wrap(ErrValidation, "threat probability out of range",
			goerr.V("id", t.ID), goerr.V("probability", t.Probability))
	}
	if t.CVE != nil {
		if err := t.CVE.Validate(); err != nil {
			return goerr.Wrap(err, "invalid CVE record", goerr.V("id", t.ID))
		}
	}
	return nil
}

// AppliesTo reports whether the threat lists the asset among its targets
func (t *Threat) AppliesTo(assetID types.AssetID) bool {
	for _, id := range t.AssetIDs {
		if id == assetID {
			return true
		}
	}
	return false
}
