package pnl

import "math"

// KellyCap limits stake suggestions to quarter-Kelly. The full formula
// gets aggressive fast and this tool never recommends shorting.
const KellyCap = 0.25

// KellyStake returns the suggested bankroll fraction for a bet with the
// given win probability and decimal odds, clamped to [0, KellyCap].
// Invalid inputs (probability outside (0,1), odds <= 1) return 0 rather
// than panicking; unlike the unit helpers, this is advisory math fed
// with estimates, not validated bet rows.
func KellyStake(winProb, odds float64) float64 {
	if winProb <= 0 || winProb >= 1 || odds <= 1 {
		return 0
	}
	b := odds - 1
	q := 1 - winProb
	k := (b*winProb - q) / b
	if k <= 0 {
		return 0
	}
	if k > KellyCap {
		return KellyCap
	}
	return k
}

// BreakEvenWinRate returns the win percentage needed to break even at
// the given decimal odds. Odds at or below 1 degenerate to 100.
func BreakEvenWinRate(odds float64) float64 {
	if odds <= 1 {
		return 100
	}
	return round2(100 / odds)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
