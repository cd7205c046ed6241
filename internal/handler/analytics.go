package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"crystalfootball/internal/pnl"
	"crystalfootball/internal/service"
)

type AnalyticsHandler struct {
	Svc *service.AnalyticsService

	Subscriber gin.HandlerFunc
	Admin      gin.HandlerFunc
}

func (h *AnalyticsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/analytics")
	if h.Subscriber != nil {
		group.Use(h.Subscriber)
	}
	group.GET("/overview", h.overview)
	group.GET("/weekly", h.weekly)
	group.GET("/monthly", h.monthly)

	tools := r.Group("/api/v1/analytics/tools")
	if h.Admin != nil {
		tools.Use(h.Admin)
	}
	tools.GET("/kelly", h.kelly)
}

func (h *AnalyticsHandler) overview(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	out, err := h.Svc.Overview(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, out, nil)
}

func (h *AnalyticsHandler) weekly(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	out, err := h.Svc.Weekly(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, out, map[string]any{"periods": len(out)})
}

func (h *AnalyticsHandler) monthly(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	out, err := h.Svc.Monthly(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, out, map[string]any{"periods": len(out)})
}

// kelly is a staking calculator for admins drafting picks: fraction of
// bankroll per Kelly (capped) plus the break-even win rate at the given
// odds.
func (h *AnalyticsHandler) kelly(c *gin.Context) {
	winProb, err := strconv.ParseFloat(strings.TrimSpace(c.Query("win_prob")), 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid win_prob", nil)
		return
	}
	odds, err := strconv.ParseFloat(strings.TrimSpace(c.Query("odds")), 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid odds", nil)
		return
	}
	Ok(c, gin.H{
		"win_prob":            winProb,
		"odds":                odds,
		"kelly_fraction":      pnl.KellyStake(winProb, odds),
		"break_even_win_rate": pnl.BreakEvenWinRate(odds),
	}, nil)
}
