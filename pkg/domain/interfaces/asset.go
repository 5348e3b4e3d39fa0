package interfaces

import (
	"context"

	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// AssetRepository persists information assets
type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) (*model.Asset, error)
	Get(ctx context.Context, id types.AssetID) (*model.Asset, error)
	List(ctx context.Context) ([]*model.Asset, error)
	Update(ctx context.Context, asset *model.Asset) (*model.Asset, error)
	Delete(ctx context.Context, id types.AssetID) error

	// ListDependents returns the assets that list id among their
	// dependencies. Used to block deletion of referenced assets.
	ListDependents(ctx context.Context, id types.AssetID) ([]*model.Asset, error)
}
