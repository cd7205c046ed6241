package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crystalfootball/internal/access"
	"crystalfootball/internal/auth"
	"crystalfootball/internal/service"
)

type SubscriptionHandler struct {
	Svc     *service.SubscriptionService
	Checker *access.Checker
}

func (h *SubscriptionHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/subscription", h.current)
	r.GET("/api/v1/subscription/history", h.history)
}

type subscriptionStatus struct {
	HasActiveSubscription bool       `json:"has_active_subscription"`
	Tier                  string     `json:"tier,omitempty"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	DaysRemaining         int        `json:"days_remaining"`
	ExpiringSoon          bool       `json:"expiring_soon"`
	ExpiryMessage         string     `json:"expiry_message,omitempty"`
}

// current reports the caller's access triple plus the countdown the
// dashboard renders.
func (h *SubscriptionHandler) current(c *gin.Context) {
	if h.Checker == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	acc := h.Checker.ActiveSubscription(c.Request.Context(), claims.UserID)
	out := subscriptionStatus{
		HasActiveSubscription: acc.HasActiveSubscription,
		Tier:                  string(acc.Tier),
	}
	if acc.HasActiveSubscription && acc.ExpiresAt != nil {
		out.ExpiresAt = acc.ExpiresAt
		days := access.DaysUntilExpiry(*acc.ExpiresAt, time.Now().UTC())
		out.DaysRemaining = days
		out.ExpiringSoon = access.IsExpiringSoon(days)
		out.ExpiryMessage = access.FormatExpiryMessage(days)
	}
	Ok(c, out, nil)
}

func (h *SubscriptionHandler) history(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}
	rows, err := h.Svc.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, map[string]any{"count": len(rows)})
}
