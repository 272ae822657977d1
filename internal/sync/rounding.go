package sync

import (
	"math"
	"time"
)

// DefaultRoundingUnit is the rounding granularity applied to tracked
// durations unless configured otherwise.
const DefaultRoundingUnit = 15 * time.Minute

// RoundDuration rounds a tracked duration, given in milliseconds, to the
// nearest multiple of unit and returns whole seconds. Ties round up: with a
// 15 minute unit, 7m30s becomes 15m, not 0.
func RoundDuration(durationMS int64, unit time.Duration) int64 {
	unitSeconds := int64(unit / time.Second)
	if unitSeconds <= 0 {
		unitSeconds = 1
	}

	seconds := float64(durationMS) / 1000
	units := math.Floor(seconds/float64(unitSeconds) + 0.5)

	return int64(units) * unitSeconds
}
