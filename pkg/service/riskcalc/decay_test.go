package riskcalc_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/service/riskcalc"
)

func decayAtAge(t *testing.T, days float64) float64 {
	t.Helper()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	discovered := now.Add(-time.Duration(days * 24 * float64(time.Hour)))
	return riskcalc.TemporalDecay(discovered, now)
}

func TestTemporalDecayShape(t *testing.T) {
	t.Run("fresh threat starts at half weight", func(t *testing.T) {
		gt.Value(t, decayAtAge(t, 0)).Equal(0.5)
	})

	t.Run("linear ramp over the first month", func(t *testing.T) {
		gt.Value(t, decayAtAge(t, 15)).Equal(0.75)
		gt.Value(t, decayAtAge(t, 30)).Equal(1.0)
	})

	t.Run("peak window is constant", func(t *testing.T) {
		gt.Value(t, decayAtAge(t, 45)).Equal(1.0)
		gt.Value(t, decayAtAge(t, 90)).Equal(1.0)
	})

	t.Run("slow decay toward the floor", func(t *testing.T) {
		// 90 + 73 days: 1.0 - 73/365 = 0.8 exactly at the floor
		gt.Number(t, decayAtAge(t, 126.5)).Less(1.0).Greater(0.8)
		gt.Value(t, decayAtAge(t, 163)).Equal(0.8)
		gt.Value(t, decayAtAge(t, 1000)).Equal(0.8)
	})

	t.Run("future discovery counts as age zero", func(t *testing.T) {
		gt.Value(t, decayAtAge(t, -10)).Equal(0.5)
	})
}

func TestTemporalDecayMonotonicityAndBounds(t *testing.T) {
	ages := []float64{0, 1, 5, 10, 20, 29, 30}
	for i := 1; i < len(ages); i++ {
		prev := decayAtAge(t, ages[i-1])
		cur := decayAtAge(t, ages[i])
		gt.Bool(t, cur >= prev).True()
	}

	tail := []float64{90, 100, 150, 200, 365, 1000}
	for i := 1; i < len(tail); i++ {
		prev := decayAtAge(t, tail[i-1])
		cur := decayAtAge(t, tail[i])
		gt.Bool(t, cur <= prev).True()
	}

	for _, age := range []float64{0, 3, 30, 60, 90, 120, 400, 5000} {
		v := decayAtAge(t, age)
		gt.Bool(t, v >= 0.5 && v <= 1.0).True()
	}
}
