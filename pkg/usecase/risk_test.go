package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/repository/memory"
	"github.com/secops-lab/magerisk/pkg/usecase"
)

func testNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func testAsset(id types.AssetID, economicValue float64) *model.Asset {
	return &model.Asset{
		ID:    id,
		Name:  "Asset " + string(id),
		Type:  types.AssetTypeServices,
		Owner: "security-team",
		Valuation: model.Valuation{
			Confidentiality: 8,
			Integrity:       10,
			Availability:    7,
		},
		EconomicValue: economicValue,
	}
}

func testThreat(id types.ThreatID, probability float64, age time.Duration) *model.Threat {
	return &model.Threat{
		ID:           id,
		Name:         "Threat " + string(id),
		Type:         types.ThreatTypeIntentionalAttack,
		Origin:       types.ThreatOriginManual,
		Probability:  probability,
		DiscoveredAt: testNow().Add(-age),
	}
}

// recordingNotifier captures risk level notifications
type recordingNotifier struct {
	mu    sync.Mutex
	calls []model.RiskID
}

func (n *recordingNotifier) NotifyRiskLevel(ctx context.Context, asset *model.Asset, threat *model.Threat, risk *model.Risk) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, risk.ID)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func newTestUseCases(t *testing.T, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	opts = append(opts, usecase.WithClock(testNow))
	uc, err := usecase.New(memory.New(), opts...)
	gt.NoError(t, err).Required()
	return uc
}

func seedTriple(t *testing.T, uc *usecase.UseCases, assetID types.AssetID, economicValue float64, threatID types.ThreatID, probability float64) {
	t.Helper()
	ctx := context.Background()
	_, err := uc.Asset.Create(ctx, testAsset(assetID, economicValue))
	gt.NoError(t, err).Required()
	_, err = uc.Threat.Create(ctx, testThreat(threatID, probability, 45*24*time.Hour))
	gt.NoError(t, err).Required()
}

func TestRiskUseCase_Calculate(t *testing.T) {
	t.Run("known scenario without vulnerability", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()
		seedTriple(t, uc, "srv-web", 100000, "ddos", 8)

		risk, err := uc.Risk.Calculate(ctx, "srv-web", "ddos", "")
		gt.NoError(t, err).Required()

		gt.Number(t, risk.Calculation.TemporalFactor).Equal(1.0)
		gt.Number(t, risk.Calculation.AdjustedProbability).Equal(4.0)
		gt.Number(t, risk.Calculation.ComputedImpact).Equal(10.0)
		gt.Number(t, risk.Calculation.Exposure).Equal(40.0)
		gt.Value(t, risk.RiskLevel).Equal(types.RiskLevelMedium)
		gt.Number(t, risk.RiskValue).Equal(40000.0)
		gt.Bool(t, risk.Active).True()
	})

	t.Run("vulnerability replaces default exploit factor", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()
		seedTriple(t, uc, "srv-web", 100000, "ddos", 8)

		_, err := uc.Vulnerability.Create(ctx, &model.Vulnerability{
			ID:             "weak-tls",
			Name:           "Weak TLS configuration",
			Exploitability: 8,
			State:          types.VulnerabilityStateOpen,
		})
		gt.NoError(t, err).Required()

		risk, err := uc.Risk.Calculate(ctx, "srv-web", "ddos", "weak-tls")
		gt.NoError(t, err).Required()

		gt.Number(t, risk.Calculation.AdjustedProbability).Equal(6.4)
		gt.Number(t, risk.Calculation.Exposure).Equal(64.0)
		gt.Value(t, risk.RiskLevel).Equal(types.RiskLevelHigh)
	})

	t.Run("missing entities are rejected", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()
		seedTriple(t, uc, "srv-web", 100000, "ddos", 8)

		_, err := uc.Risk.Calculate(ctx, "no-such-asset", "ddos", "")
		gt.Error(t, err)

		_, err = uc.Risk.Calculate(ctx, "srv-web", "no-such-threat", "")
		gt.Error(t, err)

		_, err = uc.Risk.Calculate(ctx, "srv-web", "ddos", "no-such-vuln")
		gt.Error(t, err)
	})
}

func TestRiskUseCase_CreateOrUpdateIdempotence(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()
	seedTriple(t, uc, "srv-web", 100000, "ddos", 8)

	first, err := uc.Risk.CreateOrUpdate(ctx, "srv-web", "ddos", "")
	gt.NoError(t, err).Required()

	second, err := uc.Risk.CreateOrUpdate(ctx, "srv-web", "ddos", "")
	gt.NoError(t, err).Required()

	gt.Value(t, second.ID).Equal(first.ID)

	risks, err := uc.Risk.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, risks).Length(1)
}

func TestRiskUseCase_RecalculateAllResilience(t *testing.T) {
	repo := memory.New()
	uc, err := usecase.New(repo, usecase.WithClock(testNow))
	gt.NoError(t, err).Required()
	ctx := context.Background()

	seedTriple(t, uc, "srv-a", 100000, "ddos", 8)
	_, err = uc.Asset.Create(ctx, testAsset("srv-b", 50000))
	gt.NoError(t, err).Required()
	_, err = uc.Asset.Create(ctx, testAsset("srv-c", 50000))
	gt.NoError(t, err).Required()

	for _, assetID := range []types.AssetID{"srv-a", "srv-b", "srv-c"} {
		_, err := uc.Risk.CreateOrUpdate(ctx, assetID, "ddos", "")
		gt.NoError(t, err).Required()
	}

	// Remove one asset behind the use case's back so its record breaks
	gt.NoError(t, repo.Asset().Delete(ctx, "srv-c")).Required()

	summary, err := uc.Risk.RecalculateAll(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, summary.Processed).Equal(2)
	gt.Number(t, summary.Errors).Equal(1)
}

func TestRiskUseCase_MatrixAndTopExcludeInactive(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	seedTriple(t, uc, "srv-a", 100000, "ddos", 8)
	_, err := uc.Asset.Create(ctx, testAsset("srv-b", 200000))
	gt.NoError(t, err).Required()

	riskA, err := uc.Risk.CreateOrUpdate(ctx, "srv-a", "ddos", "")
	gt.NoError(t, err).Required()
	riskB, err := uc.Risk.CreateOrUpdate(ctx, "srv-b", "ddos", "")
	gt.NoError(t, err).Required()

	// srv-b is worth twice as much, so it carries the larger risk value
	top, err := uc.Risk.TopRisks(ctx, 1)
	gt.NoError(t, err).Required()
	gt.Array(t, top).Length(1)
	gt.Value(t, top[0].ID).Equal(riskB.ID)

	gt.NoError(t, uc.Risk.Delete(ctx, riskB.ID)).Required()

	matrix, err := uc.Risk.Matrix(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, matrix.Stats.Total).Equal(1)

	top, err = uc.Risk.TopRisks(ctx, 5)
	gt.NoError(t, err).Required()
	gt.Array(t, top).Length(1)
	gt.Value(t, top[0].ID).Equal(riskA.ID)

	// The soft-deleted record is still retrievable
	deleted, err := uc.Risk.Get(ctx, riskB.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, deleted.Active).False()
}

func TestRiskUseCase_Dashboard(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	seedTriple(t, uc, "srv-a", 100000, "ddos", 8)
	_, err := uc.Asset.Create(ctx, testAsset("srv-b", 100000))
	gt.NoError(t, err).Required()

	_, err = uc.Risk.CreateOrUpdate(ctx, "srv-a", "ddos", "")
	gt.NoError(t, err).Required()
	_, err = uc.Risk.CreateOrUpdate(ctx, "srv-b", "ddos", "")
	gt.NoError(t, err).Required()

	stats, err := uc.Risk.Dashboard(ctx)
	gt.NoError(t, err).Required()

	gt.Number(t, stats.ActiveRisks).Equal(2)
	gt.Number(t, stats.TotalRiskValue).Equal(80000.0)
	gt.Number(t, stats.MeanExposure).Equal(40.0)
	gt.Number(t, stats.CountByLevel[types.RiskLevelMedium]).Equal(2)
}

func TestRiskUseCase_CacheInvalidationOnWrite(t *testing.T) {
	uc := newTestUseCases(t, usecase.WithCacheTTL(time.Hour))
	ctx := context.Background()

	seedTriple(t, uc, "srv-a", 100000, "ddos", 8)

	risk, err := uc.Risk.CreateOrUpdate(ctx, "srv-a", "ddos", "")
	gt.NoError(t, err).Required()

	matrix, err := uc.Risk.Matrix(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, matrix.Stats.Total).Equal(1)

	// A write through the use case must not serve the stale cached view
	gt.NoError(t, uc.Risk.Delete(ctx, risk.ID)).Required()

	matrix, err = uc.Risk.Matrix(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, matrix.Stats.Total).Equal(0)
}

func TestRiskUseCase_NotifyOnCriticalTransitionOnly(t *testing.T) {
	notifier := &recordingNotifier{}
	uc := newTestUseCases(t, usecase.WithNotifier(notifier))
	ctx := context.Background()

	// Economic value 200000 doubles the impact: exposure 80, critical
	_, err := uc.Asset.Create(ctx, testAsset("srv-core", 200000))
	gt.NoError(t, err).Required()
	_, err = uc.Threat.Create(ctx, testThreat("ransomware", 8, 45*24*time.Hour))
	gt.NoError(t, err).Required()

	risk, err := uc.Risk.CreateOrUpdate(ctx, "srv-core", "ransomware", "")
	gt.NoError(t, err).Required()
	gt.Value(t, risk.RiskLevel).Equal(types.RiskLevelCritical)
	gt.Number(t, notifier.count()).Equal(1)

	// Refreshing a risk that is already critical stays silent
	_, err = uc.Risk.CreateOrUpdate(ctx, "srv-core", "ransomware", "")
	gt.NoError(t, err).Required()
	gt.Number(t, notifier.count()).Equal(1)
}
