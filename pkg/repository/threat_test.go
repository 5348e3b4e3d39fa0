package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/repository/firestore"
	"github.com/secops-lab/magerisk/pkg/repository/memory"
)

func cveThreat(id types.ThreatID, probability float64) *model.Threat {
	return &model.Threat{
		ID:          id,
		Name:        "Vulnerability " + string(id),
		Type:        types.ThreatTypeIntentionalAttack,
		Origin:      types.ThreatOriginCVE,
		Probability: probability,
		CVE: &model.CVERecord{
			ID:       string(id),
			Score:    probability,
			Severity: types.CVESeverityHigh,
		},
		DiscoveredAt: time.Now().UTC().AddDate(0, 0, -10),
	}
}

func runThreatRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get roundtrip with CVE data", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Threat().Create(ctx, cveThreat("CVE-2026-0001", 7))
		gt.NoError(t, err).Required()

		retrieved, err := repo.Threat().Get(ctx, "CVE-2026-0001")
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Probability).Equal(created.Probability)
		gt.Value(t, retrieved.CVE).NotNil()
		gt.Value(t, retrieved.CVE.Severity).Equal(types.CVESeverityHigh)
	})

	t.Run("Upsert by CVE ID overwrites instead of duplicating", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Threat().Upsert(ctx, cveThreat("CVE-2026-0001", 7))
		gt.NoError(t, err).Required()

		// the feed re-delivers the CVE with a bumped score
		second, err := repo.Threat().Upsert(ctx, cveThreat("CVE-2026-0001", 9))
		gt.NoError(t, err).Required()

		gt.Value(t, second.Probability).Equal(9.0)
		gt.Bool(t, second.CreatedAt.Equal(first.CreatedAt)).True()

		threats, err := repo.Threat().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, threats).Length(1)
	})

	t.Run("Upsert inserts when absent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Threat().Upsert(ctx, cveThreat("CVE-2026-0002", 5))
		gt.NoError(t, err).Required()
		gt.Bool(t, created.CreatedAt.IsZero()).False()
	})

	t.Run("Delete removes the threat", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Threat().Create(ctx, cveThreat("CVE-2026-0001", 7))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Threat().Delete(ctx, "CVE-2026-0001")).Required()

		_, err = repo.Threat().Get(ctx, "CVE-2026-0001")
		gt.Error(t, err)
	})
}

func TestThreatRepository_Memory(t *testing.T) {
	runThreatRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestThreatRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runThreatRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "",
			firestore.WithCollectionPrefix("test_"+uuid.New().String()[:8]))
		gt.NoError(t, err).Required()
		return repo
	})
}
