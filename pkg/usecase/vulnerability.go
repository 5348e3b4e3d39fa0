package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/utils/errutil"
)

type VulnerabilityUseCase struct {
	repo  interfaces.Repository
	risks *RiskUseCase
	now   func() time.Time
}

func newVulnerabilityUseCase(repo interfaces.Repository, risks *RiskUseCase, now func() time.Time) *VulnerabilityUseCase {
	return &VulnerabilityUseCase{
		repo:  repo,
		risks: risks,
		now:   now,
	}
}

func (uc *VulnerabilityUseCase) Create(ctx context.Context, vuln *model.Vulnerability) (*model.Vulnerability, error) {
	vuln.State = vuln.State.Normalize()
	if err := vuln.Validate(); err != nil {
		return nil, err
	}
	if vuln.DetectedAt.IsZero() {
		vuln.DetectedAt = uc.now()
	}

	created, err := uc.repo.Vulnerability().Create(ctx, vuln)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create vulnerability", goerr.V(VulnerabilityIDKey, vuln.ID))
	}

	return created, nil
}

func (uc *VulnerabilityUseCase) Get(ctx context.Context, id types.VulnerabilityID) (*model.Vulnerability, error) {
	vuln, err := uc.repo.Vulnerability().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrVulnerabilityNotFound, "vulnerability not found",
			goerr.V(VulnerabilityIDKey, id))
	}
	return vuln, nil
}

func (uc *VulnerabilityUseCase) List(ctx context.Context) ([]*model.Vulnerability, error) {
	vulns, err := uc.repo.Vulnerability().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list vulnerabilities")
	}
	return vulns, nil
}

// Update replaces a vulnerability's mutable fields and refreshes the
// stored risks computed through it, since the exploitability feeds the
// adjusted probability.
func (uc *VulnerabilityUseCase) Update(ctx context.Context, vuln *model.Vulnerability) (*model.Vulnerability, error) {
	vuln.State = vuln.State.Normalize()
	if err := vuln.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.repo.Vulnerability().Get(ctx, vuln.ID); err != nil {
		return nil, goerr.Wrap(ErrVulnerabilityNotFound, "vulnerability not found",
			goerr.V(VulnerabilityIDKey, vuln.ID))
	}

	updated, err := uc.repo.Vulnerability().Update(ctx, vuln)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update vulnerability", goerr.V(VulnerabilityIDKey, vuln.ID))
	}

	uc.refreshRisks(ctx, updated.ID)

	return updated, nil
}

func (uc *VulnerabilityUseCase) Delete(ctx context.Context, id types.VulnerabilityID) error {
	if err := uc.repo.Vulnerability().Delete(ctx, id); err != nil {
		return goerr.Wrap(ErrVulnerabilityNotFound, "vulnerability not found",
			goerr.V(VulnerabilityIDKey, id))
	}
	return nil
}

// Mitigate marks the vulnerability as mitigated at the current time and
// refreshes the risks computed through it
func (uc *VulnerabilityUseCase) Mitigate(ctx context.Context, id types.VulnerabilityID) (*model.Vulnerability, error) {
	vuln, err := uc.repo.Vulnerability().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrVulnerabilityNotFound, "vulnerability not found",
			goerr.V(VulnerabilityIDKey, id))
	}

	now := uc.now()
	vuln.State = types.VulnerabilityStateMitigated
	vuln.MitigatedAt = &now

	updated, err := uc.repo.Vulnerability().Update(ctx, vuln)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mitigate vulnerability", goerr.V(VulnerabilityIDKey, id))
	}

	uc.refreshRisks(ctx, id)

	return updated, nil
}

// refreshRisks recomputes the active risks linked to the vulnerability.
// Per-record failures are logged and skipped.
func (uc *VulnerabilityUseCase) refreshRisks(ctx context.Context, id types.VulnerabilityID) {
	risks, err := uc.repo.Risk().ListActive(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to list risks for vulnerability refresh")
		return
	}

	for _, risk := range risks {
		if risk.VulnerabilityID != id {
			continue
		}
		if _, err := uc.risks.CreateOrUpdate(ctx, risk.AssetID, risk.ThreatID, risk.VulnerabilityID); err != nil {
			errutil.Handle(ctx, err, "failed to refresh risk after vulnerability change")
		}
	}
}
