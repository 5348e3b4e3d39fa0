package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type SafeguardUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func newSafeguardUseCase(repo interfaces.Repository, now func() time.Time) *SafeguardUseCase {
	return &SafeguardUseCase{
		repo: repo,
		now:  now,
	}
}

// Create registers a safeguard. An implemented safeguard with a review
// periodicity gets its next review date derived immediately.
func (uc *SafeguardUseCase) Create(ctx context.Context, sg *model.Safeguard) (*model.Safeguard, error) {
	sg.State = sg.State.Normalize()
	if err := sg.Validate(); err != nil {
		return nil, err
	}

	sg.ScheduleNextReview()

	created, err := uc.repo.Safeguard().Create(ctx, sg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create safeguard", goerr.V(SafeguardIDKey, sg.ID))
	}

	return created, nil
}

func (uc *SafeguardUseCase) Get(ctx context.Context, id types.SafeguardID) (*model.Safeguard, error) {
	sg, err := uc.repo.Safeguard().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrSafeguardNotFound, "safeguard not found", goerr.V(SafeguardIDKey, id))
	}
	return sg, nil
}

func (uc *SafeguardUseCase) List(ctx context.Context) ([]*model.Safeguard, error) {
	sgs, err := uc.repo.Safeguard().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list safeguards")
	}
	return sgs, nil
}

func (uc *SafeguardUseCase) Update(ctx context.Context, sg *model.Safeguard) (*model.Safeguard, error) {
	sg.State = sg.State.Normalize()
	if err := sg.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.repo.Safeguard().Get(ctx, sg.ID); err != nil {
		return nil, goerr.Wrap(ErrSafeguardNotFound, "safeguard not found", goerr.V(SafeguardIDKey, sg.ID))
	}

	sg.ScheduleNextReview()

	updated, err := uc.repo.Safeguard().Update(ctx, sg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update safeguard", goerr.V(SafeguardIDKey, sg.ID))
	}

	return updated, nil
}

func (uc *SafeguardUseCase) Delete(ctx context.Context, id types.SafeguardID) error {
	if err := uc.repo.Safeguard().Delete(ctx, id); err != nil {
		return goerr.Wrap(ErrSafeguardNotFound, "safeguard not found", goerr.V(SafeguardIDKey, id))
	}
	return nil
}

// Implement transitions the safeguard to implemented at the current time
// and derives its next review date from the review periodicity
func (uc *SafeguardUseCase) Implement(ctx context.Context, id types.SafeguardID) (*model.Safeguard, error) {
	sg, err := uc.repo.Safeguard().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrSafeguardNotFound, "safeguard not found", goerr.V(SafeguardIDKey, id))
	}

	now := uc.now()
	sg.State = types.SafeguardStateImplemented
	if sg.ImplementedAt == nil {
		sg.ImplementedAt = &now
	}
	sg.ScheduleNextReview()

	updated, err := uc.repo.Safeguard().Update(ctx, sg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to implement safeguard", goerr.V(SafeguardIDKey, id))
	}

	return updated, nil
}

// AddKPI appends one measurement to the safeguard's effectiveness series
func (uc *SafeguardUseCase) AddKPI(ctx context.Context, id types.SafeguardID, name string, value float64) (*model.Safeguard, error) {
	if name == "" {
		return nil, goerr.New("KPI name is required", goerr.V(SafeguardIDKey, id))
	}

	sg, err := uc.repo.Safeguard().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrSafeguardNotFound, "safeguard not found", goerr.V(SafeguardIDKey, id))
	}

	sg.KPIs = append(sg.KPIs, model.KPIMeasurement{
		Name:       name,
		Value:      value,
		MeasuredAt: uc.now(),
	})

	updated, err := uc.repo.Safeguard().Update(ctx, sg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record safeguard KPI", goerr.V(SafeguardIDKey, id))
	}

	return updated, nil
}

// ROI computes the return on investment of a safeguard against the total
// monetary value of the active risks it protects
func (uc *SafeguardUseCase) ROI(ctx context.Context, id types.SafeguardID) (float64, error) {
	sg, err := uc.repo.Safeguard().Get(ctx, id)
	if err != nil {
		return 0, goerr.Wrap(ErrSafeguardNotFound, "safeguard not found", goerr.V(SafeguardIDKey, id))
	}

	var protectedValue float64
	for _, riskID := range sg.RiskIDs {
		risk, err := uc.repo.Risk().Get(ctx, riskID)
		if err != nil {
			// Stale risk references do not contribute protected value
			continue
		}
		if risk.Active {
			protectedValue += risk.RiskValue
		}
	}

	return model.SafeguardROI(sg, protectedValue), nil
}
