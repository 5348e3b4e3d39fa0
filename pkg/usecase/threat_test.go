package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/service/nvd"
)

func testCVEItem(id, severity string, score float64) *nvd.CVEItem {
	return &nvd.CVEItem{
		ID:           id,
		Published:    "2026-07-15T10:00:00.000",
		LastModified: "2026-07-20T08:30:00.000",
		Descriptions: []nvd.Description{
			{Lang: "en", Value: "Remote code execution in example server"},
		},
		Metrics: nvd.Metrics{
			CVSSMetricV31: []nvd.CVSSMetric{
				{
					Source: "nvd@nist.gov",
					Type:   "Primary",
					CVSSData: nvd.CVSSData{
						Version:      "3.1",
						BaseScore:    score,
						BaseSeverity: severity,
					},
				},
			},
		},
	}
}

func TestThreatUseCase_UpsertFromCVE(t *testing.T) {
	t.Run("severity maps to base probability", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()

		threat, err := uc.Threat.UpsertFromCVE(ctx, testCVEItem("CVE-2026-1111", "CRITICAL", 9.8))
		gt.NoError(t, err).Required()

		gt.Value(t, threat.ID).Equal(types.ThreatID("CVE-2026-1111"))
		gt.Value(t, threat.Origin).Equal(types.ThreatOriginCVE)
		gt.Number(t, threat.Probability).Equal(9.0)
		gt.Value(t, threat.CVE).NotNil()
		gt.Value(t, threat.CVE.Severity).Equal(types.CVESeverityCritical)
		gt.Number(t, threat.CVE.Score).Equal(9.8)
		gt.Bool(t, threat.DiscoveredAt.IsZero()).False()
	})

	t.Run("re-ingestion overwrites without duplicating", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()

		_, err := uc.Threat.UpsertFromCVE(ctx, testCVEItem("CVE-2026-1111", "MEDIUM", 5.0))
		gt.NoError(t, err).Required()

		// NVD rescored the CVE upward
		rescored, err := uc.Threat.UpsertFromCVE(ctx, testCVEItem("CVE-2026-1111", "HIGH", 8.1))
		gt.NoError(t, err).Required()
		gt.Number(t, rescored.Probability).Equal(7.0)

		threats, err := uc.Threat.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, threats).Length(1)
	})

	t.Run("missing metric falls back to medium", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()

		item := &nvd.CVEItem{ID: "CVE-2026-2222", Published: "2026-07-01T00:00:00.000"}
		threat, err := uc.Threat.UpsertFromCVE(ctx, item)
		gt.NoError(t, err).Required()
		gt.Number(t, threat.Probability).Equal(5.0)
		gt.Value(t, threat.CVE.Severity).Equal(types.CVESeverityMedium)
	})

	t.Run("asset links survive re-ingestion and risks refresh", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()

		_, err := uc.Asset.Create(ctx, testAsset("srv-web", 100000))
		gt.NoError(t, err).Required()

		_, err = uc.Threat.UpsertFromCVE(ctx, testCVEItem("CVE-2026-1111", "MEDIUM", 5.0))
		gt.NoError(t, err).Required()

		_, err = uc.Threat.LinkAssets(ctx, "CVE-2026-1111", []types.AssetID{"srv-web"})
		gt.NoError(t, err).Required()

		before, err := uc.Risk.ListActive(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, before).Length(1)

		rescored, err := uc.Threat.UpsertFromCVE(ctx, testCVEItem("CVE-2026-1111", "CRITICAL", 9.8))
		gt.NoError(t, err).Required()
		gt.Array(t, rescored.AssetIDs).Length(1)

		after, err := uc.Risk.ListActive(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, after).Length(1)

		// Same record, refreshed against the rescored probability
		gt.Value(t, after[0].ID).Equal(before[0].ID)
		gt.Number(t, after[0].Probability).Greater(before[0].Probability)
	})
}

func TestThreatUseCase_LinkAssetsRequiresExistingAsset(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	_, err := uc.Threat.UpsertFromCVE(ctx, testCVEItem("CVE-2026-1111", "HIGH", 8.0))
	gt.NoError(t, err).Required()

	_, err = uc.Threat.LinkAssets(ctx, "CVE-2026-1111", []types.AssetID{"no-such-asset"})
	gt.Error(t, err)
}
