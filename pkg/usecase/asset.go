package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type AssetUseCase struct {
	repo  interfaces.Repository
	risks *RiskUseCase
}

func newAssetUseCase(repo interfaces.Repository, risks *RiskUseCase) *AssetUseCase {
	return &AssetUseCase{
		repo:  repo,
		risks: risks,
	}
}

// Create registers a new asset. Every declared dependency must already
// exist in the inventory.
func (uc *AssetUseCase) Create(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	if err := uc.checkDependenciesExist(ctx, asset); err != nil {
		return nil, err
	}

	created, err := uc.repo.Asset().Create(ctx, asset)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create asset", goerr.V(AssetIDKey, asset.ID))
	}

	return created, nil
}

func (uc *AssetUseCase) Get(ctx context.Context, id types.AssetID) (*model.Asset, error) {
	asset, err := uc.repo.Asset().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrAssetNotFound, "asset not found", goerr.V(AssetIDKey, id))
	}
	return asset, nil
}

func (uc *AssetUseCase) List(ctx context.Context) ([]*model.Asset, error) {
	assets, err := uc.repo.Asset().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assets")
	}
	return assets, nil
}

// Update replaces an asset's mutable fields. Dependency integrity is
// re-checked on every update.
func (uc *AssetUseCase) Update(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.repo.Asset().Get(ctx, asset.ID); err != nil {
		return nil, goerr.Wrap(ErrAssetNotFound, "asset not found", goerr.V(AssetIDKey, asset.ID))
	}

	if err := uc.checkDependenciesExist(ctx, asset); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Asset().Update(ctx, asset)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update asset", goerr.V(AssetIDKey, asset.ID))
	}

	return updated, nil
}

// Delete removes an asset from the inventory. Deletion is refused while
// other assets still depend on it; the active risks of a deleted asset
// are soft-deleted alongside it.
func (uc *AssetUseCase) Delete(ctx context.Context, id types.AssetID) error {
	if _, err := uc.repo.Asset().Get(ctx, id); err != nil {
		return goerr.Wrap(ErrAssetNotFound, "asset not found", goerr.V(AssetIDKey, id))
	}

	dependents, err := uc.repo.Asset().ListDependents(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve asset dependents", goerr.V(AssetIDKey, id))
	}
	if len(dependents) > 0 {
		names := make([]types.AssetID, 0, len(dependents))
		for _, dep := range dependents {
			names = append(names, dep.ID)
		}
		return goerr.Wrap(ErrAssetHasDependents, "asset cannot be deleted while others depend on it",
			goerr.V(AssetIDKey, id), goerr.V("dependents", names))
	}

	if err := uc.risks.DeactivateByAsset(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to deactivate risks of deleted asset", goerr.V(AssetIDKey, id))
	}

	if err := uc.repo.Asset().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete asset", goerr.V(AssetIDKey, id))
	}

	return nil
}

// Dependents lists the assets that rely on the given asset
func (uc *AssetUseCase) Dependents(ctx context.Context, id types.AssetID) ([]*model.Asset, error) {
	dependents, err := uc.repo.Asset().ListDependents(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve asset dependents", goerr.V(AssetIDKey, id))
	}
	return dependents, nil
}

func (uc *AssetUseCase) checkDependenciesExist(ctx context.Context, asset *model.Asset) error {
	for _, dep := range asset.Dependencies {
		if _, err := uc.repo.Asset().Get(ctx, dep); err != nil {
			return goerr.Wrap(ErrAssetNotFound, "declared dependency does not exist",
				goerr.V(AssetIDKey, asset.ID), goerr.V("dependency", dep))
		}
	}
	return nil
}
