package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/repository/firestore"
	"github.com/secops-lab/magerisk/pkg/repository/memory"
)

func sampleAsset(id types.AssetID) *model.Asset {
	return &model.Asset{
		ID:            id,
		Name:          "Asset " + string(id),
		Type:          types.AssetTypeHardware,
		Owner:         "infra",
		Custodian:     "ops",
		Location:      "dc-1",
		Valuation:     model.Valuation{Confidentiality: 7, Availability: 9},
		EconomicValue: 25000,
		Services:      []string{"billing"},
	}
}

func runAssetRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Asset().Create(ctx, sampleAsset("srv-001"))
		gt.NoError(t, err).Required()
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		retrieved, err := repo.Asset().Get(ctx, "srv-001")
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Name).Equal(created.Name)
		gt.Value(t, retrieved.Valuation).Equal(created.Valuation)
		gt.Value(t, retrieved.EconomicValue).Equal(created.EconomicValue)
	})

	t.Run("Create rejects duplicate code", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Asset().Create(ctx, sampleAsset("srv-001"))
		gt.NoError(t, err).Required()

		_, err = repo.Asset().Create(ctx, sampleAsset("srv-001"))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrConflict)).True()
	})

	t.Run("Get returns ErrNotFound for missing asset", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Asset().Get(ctx, "no-such-asset")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Update preserves creation timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Asset().Create(ctx, sampleAsset("srv-001"))
		gt.NoError(t, err).Required()

		modified := sampleAsset("srv-001")
		modified.Name = "Renamed"
		updated, err := repo.Asset().Update(ctx, modified)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Name).Equal("Renamed")
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("ListDependents finds referencing assets", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Asset().Create(ctx, sampleAsset("srv-db"))
		gt.NoError(t, err).Required()

		app := sampleAsset("app-core")
		app.Dependencies = []types.AssetID{"srv-db"}
		_, err = repo.Asset().Create(ctx, app)
		gt.NoError(t, err).Required()

		dependents, err := repo.Asset().ListDependents(ctx, "srv-db")
		gt.NoError(t, err).Required()
		gt.Array(t, dependents).Length(1)
		gt.Value(t, dependents[0].ID).Equal(types.AssetID("app-core"))

		none, err := repo.Asset().ListDependents(ctx, "app-core")
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})

	t.Run("Delete removes the asset", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Asset().Create(ctx, sampleAsset("srv-001"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Asset().Delete(ctx, "srv-001")).Required()

		_, err = repo.Asset().Get(ctx, "srv-001")
		gt.Error(t, err)
	})
}

func TestAssetRepository_Memory(t *testing.T) {
	runAssetRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestAssetRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runAssetRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "",
			firestore.WithCollectionPrefix("test_"+uuid.New().String()[:8]))
		gt.NoError(t, err).Required()
		return repo
	})
}
