package access

import (
	"fmt"
	"math"
	"time"
)

// ExpiringSoonDays is the countdown window surfaced to subscribers.
const ExpiringSoonDays = 7

// DaysUntilExpiry returns whole days until expiresAt, rounded up: 1
// with 23h59m remaining, 0 at the exact instant, negative once past.
// Callers handle negative values; nothing is clamped here.
func DaysUntilExpiry(expiresAt, now time.Time) int {
	return int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
}

// IsExpiringSoon reports whether daysRemaining falls in the warning
// window: day 7 down to day 1 inclusive. Day 0 (due today) and
// negative (already expired) are not "soon", they are "now" and "past".
func IsExpiringSoon(daysRemaining int) bool {
	return daysRemaining > 0 && daysRemaining <= ExpiringSoonDays
}

// FormatExpiryMessage renders the countdown line for a subscriber's
// dashboard.
func FormatExpiryMessage(daysRemaining int) string {
	switch {
	case daysRemaining < 0:
		return "Your subscription has expired"
	case daysRemaining == 0:
		return "Your subscription expires today"
	case daysRemaining == 1:
		return "Your subscription expires tomorrow"
	default:
		return fmt.Sprintf("Your subscription expires in %d days", daysRemaining)
	}
}
