package interfaces

import (
	"context"

	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// ThreatRepository persists threats
type ThreatRepository interface {
	Create(ctx context.Context, threat *model.Threat) (*model.Threat, error)
	Get(ctx context.Context, id types.ThreatID) (*model.Threat, error)
	List(ctx context.Context) ([]*model.Threat, error)
	Update(ctx context.Context, threat *model.Threat) (*model.Threat, error)
	Delete(ctx context.Context, id types.ThreatID) error

	// Upsert writes the threat keyed by its ID, overwriting CVE data and
	// probability of an existing record instead of duplicating it.
	// CreatedAt of an existing record is preserved.
	Upsert(ctx context.Context, threat *model.Threat) (*model.Threat, error)
}
