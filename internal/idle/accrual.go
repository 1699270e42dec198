// Package idle computes passive income accrued between collections.
//
// The engine is stateless: callers keep the last collection time and the
// current income rate and ask for the accumulated amount at any instant.
// Recomputing with the same inputs always gives the same answer, so polling it
// on a timer is safe.
package idle

import (
	"math"
	"time"
)

// State of the accumulator.
type State string

const (
	StateNoAccrual State = "no_accrual"
	StateAccruing  State = "accruing"
	StateCapped    State = "capped"
)

// Tick returns income accrued since lastCollectedAt, clamped to
// ratePerHour × capHours. Clock skew (now before lastCollectedAt) and
// invalid rates yield 0.
func Tick(now time.Time, ratePerHour float64, lastCollectedAt time.Time, capHours float64) float64 {
	if !validRate(ratePerHour) {
		return 0
	}
	elapsed := now.Sub(lastCollectedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}

	accrued := ratePerHour / 3600 * elapsed
	return math.Min(accrued, Cap(ratePerHour, capHours))
}

// Cap is the most that can accumulate before a collection.
func Cap(ratePerHour, capHours float64) float64 {
	if !validRate(ratePerHour) || math.IsNaN(capHours) || capHours <= 0 {
		return 0
	}
	if math.IsInf(capHours, 1) {
		return math.MaxFloat64
	}
	return ratePerHour * capHours
}

// OfflineCatchUp is the one-shot accrual shown to a returning player: elapsed
// time runs from the last exit, or from the last collection when the player
// never exited cleanly.
func OfflineCatchUp(now time.Time, lastExit *time.Time, lastCollectedAt time.Time, ratePerHour, capHours float64) float64 {
	from := lastCollectedAt
	if lastExit != nil && !lastExit.IsZero() {
		from = *lastExit
	}
	return Tick(now, ratePerHour, from, capHours)
}

// CollectResult is the outcome of a successful collection.
type CollectResult struct {
	Collected      int64     `json:"collected"`
	NewGameCoins   int64     `json:"new_game_coins"`
	NewAccumulated float64   `json:"new_accumulated"`
	CollectedAt    time.Time `json:"collected_at"`
}

// Collect credits the whole-coin part of accumulated. The fraction is
// dropped. ok is false when there is nothing to credit; the caller must then
// leave state untouched and skip the save.
func Collect(accumulated float64, gameCoins int64, now time.Time) (CollectResult, bool) {
	if math.IsNaN(accumulated) || accumulated < 1 {
		return CollectResult{}, false
	}

	whole := math.Floor(accumulated)
	var credit int64
	if whole >= math.MaxInt64 {
		credit = math.MaxInt64
	} else {
		credit = int64(whole)
	}

	coins := gameCoins + credit
	if coins < gameCoins {
		coins = math.MaxInt64
	}

	return CollectResult{
		Collected:    credit,
		NewGameCoins: coins,
		CollectedAt:  now,
	}, true
}

// StateOf classifies the accumulator.
func StateOf(accumulated, ratePerHour, capHours float64) State {
	limit := Cap(ratePerHour, capHours)
	switch {
	case limit <= 0 || accumulated <= 0:
		return StateNoAccrual
	case accumulated >= limit:
		return StateCapped
	default:
		return StateAccruing
	}
}

// Progress is accumulated/cap in [0,1], for progress bars.
func Progress(accumulated, ratePerHour, capHours float64) float64 {
	limit := Cap(ratePerHour, capHours)
	if limit <= 0 || accumulated <= 0 {
		return 0
	}
	return math.Min(accumulated/limit, 1)
}

func validRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}
