package interfaces

import (
	"context"

	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// SafeguardRepository persists safeguards
type SafeguardRepository interface {
	Create(ctx context.Context, sg *model.Safeguard) (*model.Safeguard, error)
	Get(ctx context.Context, id types.SafeguardID) (*model.Safeguard, error)
	List(ctx context.Context) ([]*model.Safeguard, error)
	Update(ctx context.Context, sg *model.Safeguard) (*model.Safeguard, error)
	Delete(ctx context.Context, id types.SafeguardID) error

	// ListByRisk returns the safeguards protecting the given risk record
	ListByRisk(ctx context.Context, riskID model.RiskID) ([]*model.Safeguard, error)
}
