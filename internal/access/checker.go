package access

import (
	"context"
	"time"

	"go.uber.org/zap"

	"crystalfootball/internal/models"
)

// SubscriptionSource is the single read the checker needs; the full
// repository satisfies it.
type SubscriptionSource interface {
	GetActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error)
}

// Access is the derived subscription state for one user, computed per
// request and never stored.
type Access struct {
	HasActiveSubscription bool       `json:"has_active_subscription"`
	Tier                  Tier       `json:"tier,omitempty"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
}

// NoAccess is the denied triple returned on any lookup failure.
var NoAccess = Access{}

// Checker resolves a user's current access from their subscription
// row. Lookup errors are logged and mapped to NoAccess instead of
// propagating; a transient database error must read as "locked out",
// never as a 500 on every page.
type Checker struct {
	Repo   SubscriptionSource
	Logger *zap.Logger
}

// ActiveSubscription returns the caller's access triple. A row counts
// only when its status is active and its end date is in the future.
func (c *Checker) ActiveSubscription(ctx context.Context, userID string) Access {
	if c == nil || c.Repo == nil || userID == "" {
		return NoAccess
	}
	sub, err := c.Repo.GetActiveSubscription(ctx, userID, time.Now().UTC())
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("subscription lookup failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		return NoAccess
	}
	if sub == nil {
		return NoAccess
	}
	tier := ParseTier(sub.Tier)
	if tier == TierNone {
		// A live row with a malformed tier still denies; log it so the
		// data can be fixed.
		if c.Logger != nil {
			c.Logger.Warn("active subscription with unknown tier",
				zap.String("user_id", userID),
				zap.String("tier", sub.Tier),
			)
		}
		return NoAccess
	}
	expires := sub.EndAt
	return Access{
		HasActiveSubscription: true,
		Tier:                  tier,
		ExpiresAt:             &expires,
	}
}
