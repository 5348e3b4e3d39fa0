package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

func TestScheduleNextReview(t *testing.T) {
	implemented := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("derives next review from implementation date", func(t *testing.T) {
		s := &model.Safeguard{
			ID:                 "sg-backup",
			State:              types.SafeguardStateImplemented,
			ImplementedAt:      &implemented,
			ReviewPeriodMonths: 6,
		}
		gt.Bool(t, s.ScheduleNextReview()).True()
		gt.Value(t, *s.NextReviewAt).Equal(implemented.AddDate(0, 6, 0))
	})

	t.Run("existing next review left untouched", func(t *testing.T) {
		existing := implemented.AddDate(0, 3, 0)
		s := &model.Safeguard{
			ID:                 "sg-backup",
			State:              types.SafeguardStateImplemented,
			ImplementedAt:      &implemented,
			NextReviewAt:       &existing,
			ReviewPeriodMonths: 6,
		}
		gt.Bool(t, s.ScheduleNextReview()).False()
		gt.Value(t, *s.NextReviewAt).Equal(existing)
	})

	t.Run("not implemented yet", func(t *testing.T) {
		s := &model.Safeguard{
			ID:                 "sg-backup",
			State:              types.SafeguardStatePlanned,
			ImplementedAt:      &implemented,
			ReviewPeriodMonths: 6,
		}
		gt.Bool(t, s.ScheduleNextReview()).False()
		gt.Value(t, s.NextReviewAt).Nil()
	})

	t.Run("implemented without date", func(t *testing.T) {
		s := &model.Safeguard{
			ID:                 "sg-backup",
			State:              types.SafeguardStateImplemented,
			ReviewPeriodMonths: 6,
		}
		gt.Bool(t, s.ScheduleNextReview()).False()
	})
}

func TestResidualFactor(t *testing.T) {
	s := &model.Safeguard{State: types.SafeguardStateImplemented, Effectiveness: 75}
	gt.Value(t, s.ResidualFactor()).Equal(0.25)

	proposed := &model.Safeguard{State: types.SafeguardStateProposed, Effectiveness: 75}
	gt.Value(t, proposed.ResidualFactor()).Equal(1.0)
}

func TestSafeguardROI(t *testing.T) {
	s := &model.Safeguard{
		Effectiveness:      50,
		ImplementationCost: 1000,
		MonthlyCost:        100, // annual cost = 2200
	}

	// mitigates half of 10000 = 5000; (5000-2200)/2200
	roi := model.SafeguardROI(s, 10000)
	gt.Number(t, roi).Greater(1.27).Less(1.28)

	free := &model.Safeguard{Effectiveness: 50}
	gt.Value(t, model.SafeguardROI(free, 10000)).Equal(0.0)
}
