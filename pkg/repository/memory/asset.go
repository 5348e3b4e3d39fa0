package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type assetRepository struct {
	mu     sync.RWMutex
	assets map[types.AssetID]*model.Asset
}

func newAssetRepository() *assetRepository {
	return &assetRepository{
		assets: make(map[types.AssetID]*model.Asset),
	}
}

func copyAsset(a *model.Asset) *model.Asset {
	copied := *a
	if a.Dependencies != nil {
		copied.Dependencies = make([]types.AssetID, len(a.Dependencies))
		copy(copied.Dependencies, a.Dependencies)
	}
	if a.Services != nil {
		copied.Services = make([]string, len(a.Services))
		copy(copied.Services, a.Services)
	}
	return &copied
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[asset.ID]; exists {
		return nil, goerr.Wrap(model.ErrConflict, "asset already exists", goerr.V("id", asset.ID))
	}

	now := time.Now().UTC()
	created := copyAsset(asset)
	created.CreatedAt = now
	created.UpdatedAt = now

	r.assets[created.ID] = created
	return copyAsset(created), nil
}

func (r *assetRepository) Get(ctx context.Context, id types.AssetID) (*model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "asset not found", goerr.V("id", id))
	}
	return copyAsset(asset), nil
}

func (r *assetRepository) List(ctx context.Context) ([]*model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := make([]*model.Asset, 0, len(r.assets))
	for _, asset := range r.assets {
		assets = append(assets, copyAsset(asset))
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets, nil
}

func (r *assetRepository) Update(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.assets[asset.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "asset not found", goerr.V("id", asset.ID))
	}

	updated := copyAsset(asset)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.assets[updated.ID] = updated
	return copyAsset(updated), nil
}

func (r *assetRepository) Delete(ctx context.Context, id types.AssetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[id]; !exists {
		return goerr.Wrap(ErrNotFound, "asset not found", goerr.V("id", id))
	}
	delete(r.assets, id)
	return nil
}

func (r *assetRepository) ListDependents(ctx context.Context, id types.AssetID) ([]*model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var dependents []*model.Asset
	for _, asset := range r.assets {
		if asset.DependsOn(id) {
			dependents = append(dependents, copyAsset(asset))
		}
	}
	sort.Slice(dependents, func(i, j int) bool { return dependents[i].ID < dependents[j].ID })
	return dependents, nil
}
