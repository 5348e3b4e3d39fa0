package riskcalc

import "time"

// Temporal decay shape. A threat's weight ramps up while it becomes known
// and weaponized, peaks, then slowly decays toward a floor: an old threat
// never fully stops mattering.
const (
	decayRampDays = 30.0  // linear ramp 0.5 -> 1.0 over the first month
	decayPeakDays = 90.0  // constant 1.0 until here
	decaySpanDays = 365.0 // decay horizon after the peak window
	decayFloor    = 0.8
	decayRampBase = 0.5
)

const hoursPerDay = 24.0

// TemporalDecay returns the age-dependent weighting of a threat discovered
// at the given time, evaluated at now. The result is always within
// [decayRampBase, 1.0]. A discovery date in the future counts as age zero.
func TemporalDecay(discoveredAt, now time.Time) float64 {
	ageDays := now.Sub(discoveredAt).Hours() / hoursPerDay
	if ageDays < 0 {
		ageDays = 0
	}

	switch {
	case ageDays <= decayRampDays:
		return decayRampBase + ageDays/(2*decayRampDays)
	case ageDays <= decayPeakDays:
		return 1.0
	default:
		decayed := 1.0 - (ageDays-decayPeakDays)/decaySpanDays
		if decayed < decayFloor {
			return decayFloor
		}
		return decayed
	}
}
