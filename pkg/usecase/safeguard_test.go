package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

func testSafeguard(id types.SafeguardID) *model.Safeguard {
	return &model.Safeguard{
		ID:                 id,
		Name:               "Web application firewall",
		Type:               types.SafeguardTypePreventive,
		State:              types.SafeguardStatePlanned,
		Effectiveness:      70,
		ImplementationCost: 10000,
		MonthlyCost:        500,
		ReviewPeriodMonths: 6,
	}
}

func TestSafeguardUseCase_ImplementSchedulesReview(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	created, err := uc.Safeguard.Create(ctx, testSafeguard("waf"))
	gt.NoError(t, err).Required()
	gt.Value(t, created.NextReviewAt).Nil()

	implemented, err := uc.Safeguard.Implement(ctx, "waf")
	gt.NoError(t, err).Required()
	gt.Value(t, implemented.State).Equal(types.SafeguardStateImplemented)
	gt.Value(t, implemented.ImplementedAt).NotNil()
	gt.Value(t, implemented.NextReviewAt).NotNil()

	expected := testNow().AddDate(0, 6, 0)
	gt.Bool(t, implemented.NextReviewAt.Equal(expected)).True()
}

func TestSafeguardUseCase_ExistingReviewDateIsKept(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	sg := testSafeguard("waf")
	sg.State = types.SafeguardStateImplemented
	when := testNow().AddDate(0, -1, 0)
	review := testNow().AddDate(0, 2, 0)
	sg.ImplementedAt = &when
	sg.NextReviewAt = &review

	created, err := uc.Safeguard.Create(ctx, sg)
	gt.NoError(t, err).Required()
	gt.Bool(t, created.NextReviewAt.Equal(review)).True()
}

func TestSafeguardUseCase_AddKPI(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	_, err := uc.Safeguard.Create(ctx, testSafeguard("waf"))
	gt.NoError(t, err).Required()

	updated, err := uc.Safeguard.AddKPI(ctx, "waf", "blocked_requests", 1532)
	gt.NoError(t, err).Required()
	gt.Array(t, updated.KPIs).Length(1)
	gt.Value(t, updated.KPIs[0].Name).Equal("blocked_requests")

	_, err = uc.Safeguard.AddKPI(ctx, "waf", "", 1)
	gt.Error(t, err)
}

func TestSafeguardUseCase_ROI(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	seedTriple(t, uc, "srv-web", 100000, "ddos", 8)
	risk, err := uc.Risk.CreateOrUpdate(ctx, "srv-web", "ddos", "")
	gt.NoError(t, err).Required()

	sg := testSafeguard("waf")
	sg.RiskIDs = []model.RiskID{risk.ID}
	_, err = uc.Safeguard.Create(ctx, sg)
	gt.NoError(t, err).Required()

	// protected 40000 * 0.7 = 28000 mitigated; annual cost 16000
	roi, err := uc.Safeguard.ROI(ctx, "waf")
	gt.NoError(t, err).Required()
	gt.Number(t, roi).Equal(0.75)

	// A deactivated risk stops contributing protected value
	gt.NoError(t, uc.Risk.Delete(ctx, risk.ID)).Required()
	roi, err = uc.Safeguard.ROI(ctx, "waf")
	gt.NoError(t, err).Required()
	gt.Number(t, roi).Equal(-1.0)
}

func TestSafeguardUseCase_UpdateValidation(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	created, err := uc.Safeguard.Create(ctx, testSafeguard("waf"))
	gt.NoError(t, err).Required()

	time.Sleep(time.Millisecond)

	created.Effectiveness = 120
	_, err = uc.Safeguard.Update(ctx, created)
	gt.Error(t, err)

	created.Effectiveness = 85
	updated, err := uc.Safeguard.Update(ctx, created)
	gt.NoError(t, err).Required()
	gt.Number(t, updated.Effectiveness).Equal(85.0)
}
