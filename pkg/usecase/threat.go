package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/service/nvd"
	"github.com/secops-lab/magerisk/pkg/service/riskcalc"
)

// nvdTimeLayouts are the timestamp formats observed in NVD API responses
var nvdTimeLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseNVDTime(s string) time.Time {
	for _, layout := range nvdTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type ThreatUseCase struct {
	repo   interfaces.Repository
	policy riskcalc.Policy
	risks  *RiskUseCase
	now    func() time.Time
}

func newThreatUseCase(repo interfaces.Repository, policy riskcalc.Policy, risks *RiskUseCase, now func() time.Time) *ThreatUseCase {
	return &ThreatUseCase{
		repo:   repo,
		policy: policy,
		risks:  risks,
		now:    now,
	}
}

// Create registers a threat from the MAGERIT catalog or manual entry
func (uc *ThreatUseCase) Create(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	threat.Origin = threat.Origin.Normalize()
	if err := threat.Validate(); err != nil {
		return nil, err
	}
	if threat.DiscoveredAt.IsZero() {
		threat.DiscoveredAt = uc.now()
	}

	created, err := uc.repo.Threat().Create(ctx, threat)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create threat", goerr.V(ThreatIDKey, threat.ID))
	}

	return created, nil
}

func (uc *ThreatUseCase) Get(ctx context.Context, id types.ThreatID) (*model.Threat, error) {
	threat, err := uc.repo.Threat().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrThreatNotFound, "threat not found", goerr.V(ThreatIDKey, id))
	}
	return threat, nil
}

func (uc *ThreatUseCase) List(ctx context.Context) ([]*model.Threat, error) {
	threats, err := uc.repo.Threat().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list threats")
	}
	return threats, nil
}

// Update replaces a threat's mutable fields and refreshes the stored
// risks it participates in.
func (uc *ThreatUseCase) Update(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	threat.Origin = threat.Origin.Normalize()
	if err := threat.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.repo.Threat().Get(ctx, threat.ID); err != nil {
		return nil, goerr.Wrap(ErrThreatNotFound, "threat not found", goerr.V(ThreatIDKey, threat.ID))
	}

	updated, err := uc.repo.Threat().Update(ctx, threat)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update threat", goerr.V(ThreatIDKey, threat.ID))
	}

	if err := uc.risks.RefreshForAssets(ctx, updated.ID, updated.AssetIDs); err != nil {
		return nil, goerr.Wrap(err, "failed to refresh risks after threat update",
			goerr.V(ThreatIDKey, threat.ID))
	}

	return updated, nil
}

func (uc *ThreatUseCase) Delete(ctx context.Context, id types.ThreatID) error {
	if err := uc.repo.Threat().Delete(ctx, id); err != nil {
		return goerr.Wrap(ErrThreatNotFound, "threat not found", goerr.V(ThreatIDKey, id))
	}
	return nil
}

// UpsertFromCVE converts a fetched CVE record into a threat and writes it
// through the deduplicating upsert: re-ingesting the same CVE overwrites
// the feed data in place. Asset links made by operators on a previous
// ingestion survive, and the stored risks of those assets are refreshed
// against the new probability.
func (uc *ThreatUseCase) UpsertFromCVE(ctx context.Context, item *nvd.CVEItem) (*model.Threat, error) {
	if item == nil || item.ID == "" {
		return nil, goerr.New("CVE item without ID")
	}

	metric, hasMetric := item.BaseMetric()

	severity := types.CVESeverityMedium
	if hasMetric {
		if parsed, err := types.ParseCVESeverity(metric.BaseSeverity); err == nil {
			severity = parsed
		}
	}

	publishedAt := parseNVDTime(item.Published)
	discoveredAt := publishedAt
	if discoveredAt.IsZero() {
		discoveredAt = uc.now()
	}

	threat := &model.Threat{
		ID:          types.ThreatID(item.ID),
		Name:        item.ID,
		Type:        types.ThreatTypeIntentionalAttack,
		Origin:      types.ThreatOriginCVE,
		Description: item.EnglishDescription(),
		Probability: uc.policy.ProbabilityForSeverity(severity),
		CVE: &model.CVERecord{
			ID:               item.ID,
			Score:            metric.BaseScore,
			Severity:         severity,
			AffectedSoftware: item.AffectedProducts(),
			PublishedAt:      publishedAt,
			ModifiedAt:       parseNVDTime(item.LastModified),
			Description:      item.EnglishDescription(),
		},
		DiscoveredAt: discoveredAt,
	}

	// Preserve operator-made asset links across re-ingestion
	if existing, err := uc.repo.Threat().Get(ctx, threat.ID); err == nil {
		threat.AssetIDs = existing.AssetIDs
	}

	if err := threat.Validate(); err != nil {
		return nil, goerr.Wrap(err, "CVE record rejected", goerr.V("cve_id", item.ID))
	}

	stored, err := uc.repo.Threat().Upsert(ctx, threat)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert CVE threat", goerr.V("cve_id", item.ID))
	}

	if len(stored.AssetIDs) > 0 {
		if err := uc.risks.RefreshForAssets(ctx, stored.ID, stored.AssetIDs); err != nil {
			return nil, goerr.Wrap(err, "failed to refresh risks after CVE ingestion",
				goerr.V("cve_id", item.ID))
		}
	}

	return stored, nil
}

// LinkAssets attaches assets to a threat and computes the resulting risks
func (uc *ThreatUseCase) LinkAssets(ctx context.Context, id types.ThreatID, assetIDs []types.AssetID) (*model.Threat, error) {
	threat, err := uc.repo.Threat().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrThreatNotFound, "threat not found", goerr.V(ThreatIDKey, id))
	}

	for _, assetID := range assetIDs {
		if _, err := uc.repo.Asset().Get(ctx, assetID); err != nil {
			return nil, goerr.Wrap(ErrAssetNotFound, "linked asset does not exist",
				goerr.V(ThreatIDKey, id), goerr.V(AssetIDKey, assetID))
		}
		if !threat.AppliesTo(assetID) {
			threat.AssetIDs = append(threat.AssetIDs, assetID)
		}
	}

	updated, err := uc.repo.Threat().Update(ctx, threat)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to link assets to threat", goerr.V(ThreatIDKey, id))
	}

	for _, assetID := range assetIDs {
		if _, err := uc.risks.CreateOrUpdate(ctx, assetID, id, ""); err != nil {
			return nil, goerr.Wrap(err, "failed to compute risk for linked asset",
				goerr.V(ThreatIDKey, id), goerr.V(AssetIDKey, assetID))
		}
	}

	return updated, nil
}
