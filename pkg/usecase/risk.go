package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/service/cache"
	"github.com/secops-lab/magerisk/pkg/service/notify"
	"github.com/secops-lab/magerisk/pkg/service/riskcalc"
	"github.com/secops-lab/magerisk/pkg/utils/errutil"
	"golang.org/x/sync/errgroup"
)

// recalcConcurrency bounds parallel recalculation against the repository
const recalcConcurrency = 8

const (
	matrixCacheKey    = "matrix"
	dashboardCacheKey = "dashboard"
)

type RiskUseCase struct {
	repo       interfaces.Repository
	calculator *riskcalc.Calculator
	notifier   notify.Service
	now        func() time.Time

	matrixCache    *cache.Cache[string, *model.RiskMatrix]
	dashboardCache *cache.Cache[string, *model.DashboardStats]
}

func newRiskUseCase(repo interfaces.Repository, calculator *riskcalc.Calculator, notifier notify.Service, cacheTTL time.Duration, now func() time.Time) *RiskUseCase {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &RiskUseCase{
		repo:       repo,
		calculator: calculator,
		notifier:   notifier,
		now:        now,
		matrixCache: cache.New(
			cache.WithTTL[string, *model.RiskMatrix](cacheTTL),
		),
		dashboardCache: cache.New(
			cache.WithTTL[string, *model.DashboardStats](cacheTTL),
		),
	}
}

func (uc *RiskUseCase) invalidateCaches() {
	uc.matrixCache.Clear()
	uc.dashboardCache.Clear()
}

// Calculate evaluates the risk of an (asset, threat, vulnerability?)
// triple without persisting anything. An empty vulnID means the risk is
// computed with the default exploit factor.
func (uc *RiskUseCase) Calculate(ctx context.Context, assetID types.AssetID, threatID types.ThreatID, vulnID types.VulnerabilityID) (*model.Risk, error) {
	asset, err := uc.repo.Asset().Get(ctx, assetID)
	if err != nil {
		return nil, goerr.Wrap(ErrAssetNotFound, "asset not found", goerr.V(AssetIDKey, assetID))
	}
	threat, err := uc.repo.Threat().Get(ctx, threatID)
	if err != nil {
		return nil, goerr.Wrap(ErrThreatNotFound, "threat not found", goerr.V(ThreatIDKey, threatID))
	}

	var vuln *model.Vulnerability
	if vulnID != "" {
		vuln, err = uc.repo.Vulnerability().Get(ctx, vulnID)
		if err != nil {
			return nil, goerr.Wrap(ErrVulnerabilityNotFound, "vulnerability not found",
				goerr.V(VulnerabilityIDKey, vulnID))
		}
	}

	now := uc.now()
	calc, err := uc.calculator.Calculate(asset, threat, vuln, now)
	if err != nil {
		return nil, goerr.Wrap(err, "risk calculation failed",
			goerr.V(AssetIDKey, assetID), goerr.V(ThreatIDKey, threatID))
	}

	return &model.Risk{
		AssetID:         assetID,
		ThreatID:        threatID,
		VulnerabilityID: vulnID,
		Calculation:     *calc,
		RiskValue:       riskcalc.ValueAtRisk(asset.EconomicValue, calc),
		RiskLevel:       uc.calculator.Classify(calc.Exposure),
		Probability:     calc.AdjustedProbability,
		Impact:          calc.ComputedImpact,
		CalculatedAt:    now,
		Active:          true,
	}, nil
}

// CreateOrUpdate evaluates the triple and persists the result. Repeated
// calls for the same triple update the single existing record in place.
func (uc *RiskUseCase) CreateOrUpdate(ctx context.Context, assetID types.AssetID, threatID types.ThreatID, vulnID types.VulnerabilityID) (*model.Risk, error) {
	risk, err := uc.Calculate(ctx, assetID, threatID, vulnID)
	if err != nil {
		return nil, err
	}

	previous, prevErr := uc.repo.Risk().GetByTriple(ctx, risk.Triple())

	stored, err := uc.repo.Risk().Upsert(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store risk",
			goerr.V(AssetIDKey, assetID), goerr.V(ThreatIDKey, threatID))
	}

	uc.invalidateCaches()

	// Notify only on transitions into critical, not on every refresh
	wasCritical := prevErr == nil && previous.Active && previous.RiskLevel == types.RiskLevelCritical
	if uc.notifier != nil && stored.RiskLevel == types.RiskLevelCritical && !wasCritical {
		uc.notifyCritical(ctx, stored)
	}

	return stored, nil
}

func (uc *RiskUseCase) notifyCritical(ctx context.Context, risk *model.Risk) {
	asset, err := uc.repo.Asset().Get(ctx, risk.AssetID)
	if err != nil {
		errutil.Handle(ctx, err, "failed to load asset for risk notification")
		return
	}
	threat, err := uc.repo.Threat().Get(ctx, risk.ThreatID)
	if err != nil {
		errutil.Handle(ctx, err, "failed to load threat for risk notification")
		return
	}
	if err := uc.notifier.NotifyRiskLevel(ctx, asset, threat, risk); err != nil {
		// Notification failures never fail the write path
		errutil.Handle(ctx, err, "failed to send risk notification")
	}
}

// RecalculateAll re-evaluates every active risk record against the
// current state of its triple. A record whose asset, threat or
// vulnerability has gone missing, or whose inputs are now invalid, is
// counted as an error and skipped; the batch always runs to completion.
func (uc *RiskUseCase) RecalculateAll(ctx context.Context) (*model.RecalcSummary, error) {
	risks, err := uc.repo.Risk().ListActive(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active risks")
	}

	var mu sync.Mutex
	summary := &model.RecalcSummary{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recalcConcurrency)

	for _, risk := range risks {
		g.Go(func() error {
			_, err := uc.CreateOrUpdate(gctx, risk.AssetID, risk.ThreatID, risk.VulnerabilityID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Errors++
				errutil.Handle(gctx, err, "risk recalculation failed for record")
				return nil
			}
			summary.Processed++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, goerr.Wrap(err, "recalculation aborted")
	}

	uc.invalidateCaches()

	return summary, nil
}

// Get returns a risk record by ID, including soft-deleted ones
func (uc *RiskUseCase) Get(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
	}
	return risk, nil
}

// List returns every risk record including inactive ones
func (uc *RiskUseCase) List(ctx context.Context) ([]*model.Risk, error) {
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	return risks, nil
}

// ListActive returns the live risk records
func (uc *RiskUseCase) ListActive(ctx context.Context) ([]*model.Risk, error) {
	risks, err := uc.repo.Risk().ListActive(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active risks")
	}
	return risks, nil
}

// Delete soft-deletes a risk record. The record stays queryable but
// disappears from the matrix, top-N and dashboard views.
func (uc *RiskUseCase) Delete(ctx context.Context, id model.RiskID) error {
	if err := uc.repo.Risk().Deactivate(ctx, id); err != nil {
		return goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
	}
	uc.invalidateCaches()
	return nil
}

// Matrix builds the level-grouped view of all active risks. Results are
// cached briefly; any write through this use case invalidates the cache.
func (uc *RiskUseCase) Matrix(ctx context.Context) (*model.RiskMatrix, error) {
	if cached, ok := uc.matrixCache.Get(matrixCacheKey); ok {
		return cached, nil
	}

	risks, err := uc.repo.Risk().ListActive(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active risks")
	}

	matrix := &model.RiskMatrix{
		ByLevel: make(map[types.RiskLevel][]*model.Risk),
		Stats: model.MatrixStats{
			Total:        len(risks),
			CountByLevel: make(map[types.RiskLevel]int),
		},
	}

	for _, risk := range risks {
		matrix.ByLevel[risk.RiskLevel] = append(matrix.ByLevel[risk.RiskLevel], risk)
		matrix.Stats.CountByLevel[risk.RiskLevel]++
		matrix.Stats.TotalRiskValue += risk.RiskValue
	}

	// Most valuable risks first within each level
	for _, group := range matrix.ByLevel {
		sort.Slice(group, func(i, j int) bool {
			return group[i].RiskValue > group[j].RiskValue
		})
	}

	uc.matrixCache.Set(matrixCacheKey, matrix)

	return matrix, nil
}

// TopRisks returns the n active risks with the highest monetary value.
// Ties break toward the more severe level.
func (uc *RiskUseCase) TopRisks(ctx context.Context, n int) ([]*model.Risk, error) {
	if n <= 0 {
		return nil, goerr.New("top risk count must be positive", goerr.V("n", n))
	}

	risks, err := uc.repo.Risk().ListActive(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active risks")
	}

	sort.Slice(risks, func(i, j int) bool {
		if risks[i].RiskValue != risks[j].RiskValue {
			return risks[i].RiskValue > risks[j].RiskValue
		}
		return risks[i].RiskLevel.Rank() > risks[j].RiskLevel.Rank()
	})

	if len(risks) > n {
		risks = risks[:n]
	}
	return risks, nil
}

// Dashboard aggregates the KPI figures over all active risks
func (uc *RiskUseCase) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	if cached, ok := uc.dashboardCache.Get(dashboardCacheKey); ok {
		return cached, nil
	}

	risks, err := uc.repo.Risk().ListActive(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active risks")
	}

	stats := &model.DashboardStats{
		ActiveRisks:  len(risks),
		CountByLevel: make(map[types.RiskLevel]int),
	}

	var exposureSum float64
	for _, risk := range risks {
		stats.TotalRiskValue += risk.RiskValue
		stats.CountByLevel[risk.RiskLevel]++
		exposureSum += risk.Calculation.Exposure
	}
	if len(risks) > 0 {
		stats.MeanExposure = exposureSum / float64(len(risks))
	}

	uc.dashboardCache.Set(dashboardCacheKey, stats)

	return stats, nil
}

// DeactivateByAsset soft-deletes the active risks referencing an asset.
// Used when the asset itself is removed from the inventory.
func (uc *RiskUseCase) DeactivateByAsset(ctx context.Context, assetID types.AssetID) error {
	risks, err := uc.repo.Risk().ListActive(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list active risks")
	}

	for _, risk := range risks {
		if risk.AssetID != assetID {
			continue
		}
		if err := uc.repo.Risk().Deactivate(ctx, risk.ID); err != nil {
			return goerr.Wrap(err, "failed to deactivate risk for removed asset",
				goerr.V(RiskIDKey, risk.ID), goerr.V(AssetIDKey, assetID))
		}
	}

	uc.invalidateCaches()
	return nil
}

// RefreshForAssets re-evaluates the stored risks of the given assets for
// one threat. Called after CVE ingestion updates a threat's probability.
func (uc *RiskUseCase) RefreshForAssets(ctx context.Context, threatID types.ThreatID, assetIDs []types.AssetID) error {
	risks, err := uc.repo.Risk().ListActive(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list active risks")
	}

	targets := make(map[types.AssetID]bool, len(assetIDs))
	for _, id := range assetIDs {
		targets[id] = true
	}

	for _, risk := range risks {
		if risk.ThreatID != threatID || !targets[risk.AssetID] {
			continue
		}
		if _, err := uc.CreateOrUpdate(ctx, risk.AssetID, risk.ThreatID, risk.VulnerabilityID); err != nil {
			// Stale records must not block the rest of the refresh
			errutil.Handle(ctx, err, "failed to refresh risk after threat update")
		}
	}

	return nil
}
