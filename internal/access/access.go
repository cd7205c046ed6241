// Package access gates betslips by subscription tier and computes the
// expiry/countdown state the dashboard shows. The decision logic is
// pure; only Checker reads the database, and it fails open to "no
// access" rather than surfacing errors.
package access

import "crystalfootball/internal/models"

// Tier is a subscription entitlement level. Entitlement broadens with
// rank: monthly(1) < half_season(2) < full_season(3). The zero value
// means no tier.
type Tier string

const (
	TierNone       Tier = ""
	TierMonthly    Tier = "monthly"
	TierHalfSeason Tier = "half_season"
	TierFullSeason Tier = "full_season"
)

var tierRanks = map[Tier]int{
	TierMonthly:    1,
	TierHalfSeason: 2,
	TierFullSeason: 3,
}

// Rank returns the tier's position in the hierarchy, 0 for none or an
// unknown value.
func (t Tier) Rank() int {
	return tierRanks[t]
}

// ParseTier normalizes a stored tier string. Unknown values map to
// TierNone, which every access check denies.
func ParseTier(s string) Tier {
	t := Tier(s)
	if t.Rank() == 0 {
		return TierNone
	}
	return t
}

// CanAccessBetslip reports whether a user on userTier may view a bet
// requiring requiredTier. No tier never grants access, and a malformed
// required tier denies rather than defaulting open.
func CanAccessBetslip(userTier Tier, requiredTier Tier) bool {
	ur, rr := userTier.Rank(), requiredTier.Rank()
	return ur > 0 && rr > 0 && ur >= rr
}

// FilterByTier keeps the bets userTier may view, preserving input
// order. A user without a tier sees nothing.
func FilterByTier(bets []models.Betslip, userTier Tier) []models.Betslip {
	if userTier.Rank() == 0 {
		return nil
	}
	out := make([]models.Betslip, 0, len(bets))
	for _, b := range bets {
		if CanAccessBetslip(userTier, ParseTier(b.MinTier)) {
			out = append(out, b)
		}
	}
	return out
}
