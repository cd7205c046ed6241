package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"crystalfootball/internal/access"
	"crystalfootball/internal/auth"
	"crystalfootball/internal/models"
	"crystalfootball/internal/pnl"
	"crystalfootball/internal/repository"
	"crystalfootball/internal/service"
)

type BetslipHandler struct {
	Feed *service.FeedService
	Svc  *service.BetslipService
	Repo repository.Repository

	Subscriber gin.HandlerFunc
	Admin      gin.HandlerFunc
}

func (h *BetslipHandler) Register(r *gin.Engine) {
	member := r.Group("/api/v1/betslips")
	if h.Subscriber != nil {
		member.Use(h.Subscriber)
	}
	member.GET("", h.feed)
	member.GET("/:id", h.get)

	admin := r.Group("/api/v1/betslips")
	if h.Admin != nil {
		admin.Use(h.Admin)
	}
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.POST("/:id/settle", h.settle)
	admin.POST("/:id/void", h.void)
	admin.POST("/:id/legs", h.addLeg)
	admin.PUT("/:id/legs/:legID", h.updateLeg)
	admin.DELETE("/:id/legs/:legID", h.removeLeg)
	admin.GET("/:id/settlements", h.settlements)
}

// callerTier resolves the tier RequireSubscriber stored; admins browse
// the feed at full_season visibility.
func callerTier(c *gin.Context) access.Tier {
	if acc, ok := auth.AccessFrom(c); ok {
		return acc.Tier
	}
	if claims, ok := auth.ClaimsFrom(c); ok && claims.Role == models.RoleAdmin {
		return access.TierFullSeason
	}
	return access.TierNone
}

func (h *BetslipHandler) feed(c *gin.Context) {
	if h.Feed == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	out, err := h.Feed.ForTier(c.Request.Context(), callerTier(c))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, out, nil)
}

func (h *BetslipHandler) get(c *gin.Context) {
	if h.Feed == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	bet, err := h.Feed.Get(c.Request.Context(), id, callerTier(c))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if bet == nil {
		// Tier-gated rows 404 rather than revealing they exist.
		Error(c, http.StatusNotFound, "betslip not found", nil)
		return
	}
	var meta map[string]any
	if bet.BetType == models.BetTypeMulti {
		meta = map[string]any{"legs": pnl.LegStatusSummary(bet.Legs)}
	}
	Ok(c, bet, meta)
}

type createLegRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OddsDecimal string `json:"odds_decimal"`
}

type createBetslipRequest struct {
	Title         string             `json:"title"`
	League        string             `json:"league"`
	HomeTeam      string             `json:"home_team"`
	AwayTeam      string             `json:"away_team"`
	Market        string             `json:"market"`
	Selection     string             `json:"selection"`
	OddsDecimal   string             `json:"odds_decimal"`
	StakeUnits    string             `json:"stake_units"`
	ConfidencePct int                `json:"confidence_pct"`
	MinTier       string             `json:"min_tier"`
	IsVIP         bool               `json:"is_vip"`
	Tags          json.RawMessage    `json:"tags"`
	EventTime     string             `json:"event_time"`
	Legs          []createLegRequest `json:"legs"`
}

func (h *BetslipHandler) create(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req createBetslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	odds, err := decimal.NewFromString(strings.TrimSpace(req.OddsDecimal))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid odds_decimal", nil)
		return
	}
	stake, err := decimal.NewFromString(strings.TrimSpace(req.StakeUnits))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid stake_units", nil)
		return
	}
	eventTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EventTime))
	if err != nil {
		Error(c, http.StatusBadRequest, "event_time must be RFC3339", nil)
		return
	}

	in := service.CreateBetslipInput{
		Title:         req.Title,
		League:        req.League,
		HomeTeam:      req.HomeTeam,
		AwayTeam:      req.AwayTeam,
		Market:        req.Market,
		Selection:     req.Selection,
		OddsDecimal:   odds,
		StakeUnits:    stake,
		ConfidencePct: req.ConfidencePct,
		MinTier:       req.MinTier,
		IsVIP:         req.IsVIP,
		Tags:          req.Tags,
		EventTime:     eventTime.UTC(),
	}
	for _, leg := range req.Legs {
		legOdds, err := decimal.NewFromString(strings.TrimSpace(leg.OddsDecimal))
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid leg odds_decimal", nil)
			return
		}
		in.Legs = append(in.Legs, service.LegInput{
			Title:       leg.Title,
			Description: leg.Description,
			OddsDecimal: legOdds,
		})
	}

	bet, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		betslipError(c, err)
		return
	}
	Ok(c, bet, nil)
}

type updateBetslipRequest struct {
	Title         *string         `json:"title"`
	League        *string         `json:"league"`
	Selection     *string         `json:"selection"`
	OddsDecimal   *string         `json:"odds_decimal"`
	StakeUnits    *string         `json:"stake_units"`
	ConfidencePct *int            `json:"confidence_pct"`
	MinTier       *string         `json:"min_tier"`
	IsVIP         *bool           `json:"is_vip"`
	Tags          json.RawMessage `json:"tags"`
	EventTime     *string         `json:"event_time"`
}

func (h *BetslipHandler) update(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req updateBetslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}

	in := service.UpdateBetslipInput{
		Title:         req.Title,
		League:        req.League,
		Selection:     req.Selection,
		ConfidencePct: req.ConfidencePct,
		MinTier:       req.MinTier,
		IsVIP:         req.IsVIP,
		Tags:          req.Tags,
	}
	if req.OddsDecimal != nil {
		v, err := decimal.NewFromString(strings.TrimSpace(*req.OddsDecimal))
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid odds_decimal", nil)
			return
		}
		in.OddsDecimal = &v
	}
	if req.StakeUnits != nil {
		v, err := decimal.NewFromString(strings.TrimSpace(*req.StakeUnits))
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid stake_units", nil)
			return
		}
		in.StakeUnits = &v
	}
	if req.EventTime != nil {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.EventTime))
		if err != nil {
			Error(c, http.StatusBadRequest, "event_time must be RFC3339", nil)
			return
		}
		utc := ts.UTC()
		in.EventTime = &utc
	}

	bet, err := h.Svc.Update(c.Request.Context(), id, in)
	if err != nil {
		betslipError(c, err)
		return
	}
	Ok(c, bet, nil)
}

type settleRequest struct {
	Outcome string `json:"outcome"`
}

func (h *BetslipHandler) settle(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	claims, _ := auth.ClaimsFrom(c)
	bet, err := h.Svc.SettleSingle(c.Request.Context(), id, strings.TrimSpace(req.Outcome), claims.UserID)
	if err != nil {
		betslipError(c, err)
		return
	}
	Ok(c, gin.H{"betslip": bet, "pnl": pnl.OutcomePnL(*bet)}, nil)
}

type voidRequest struct {
	Reason string `json:"reason"`
}

func (h *BetslipHandler) void(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req voidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
	}
	claims, _ := auth.ClaimsFrom(c)
	bet, err := h.Svc.Void(c.Request.Context(), id, req.Reason, claims.UserID)
	if err != nil {
		betslipError(c, err)
		return
	}
	Ok(c, bet, nil)
}

func (h *BetslipHandler) addLeg(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req createLegRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	odds, err := decimal.NewFromString(strings.TrimSpace(req.OddsDecimal))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid odds_decimal", nil)
		return
	}
	bet, err := h.Svc.AddLeg(c.Request.Context(), id, service.LegInput{
		Title:       req.Title,
		Description: req.Description,
		OddsDecimal: odds,
	})
	if err != nil {
		betslipError(c, err)
		return
	}
	Ok(c, bet, nil)
}

type updateLegRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// updateLeg records one leg result; when the update decides the whole
// bet, the response carries the derived settlement too.
func (h *BetslipHandler) updateLeg(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	legID, err := strconv.ParseUint(c.Param("legID"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid leg id", nil)
		return
	}
	var req updateLegRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	claims, _ := auth.ClaimsFrom(c)
	bet, decision, err := h.Svc.UpdateLegStatus(c.Request.Context(), id, legID, strings.TrimSpace(req.Status), req.Notes, claims.UserID)
	if err != nil {
		betslipError(c, err)
		return
	}
	meta := map[string]any{"settled": decision.ShouldSettle}
	if decision.ShouldSettle {
		meta["outcome"] = decision.Outcome
		meta["reason"] = decision.Reason
	}
	Ok(c, bet, meta)
}

func (h *BetslipHandler) removeLeg(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	legID, err := strconv.ParseUint(c.Param("legID"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid leg id", nil)
		return
	}
	bet, err := h.Svc.RemoveLeg(c.Request.Context(), id, legID)
	if err != nil {
		betslipError(c, err)
		return
	}
	Ok(c, bet, nil)
}

// settlements returns the audit trail for one betslip.
func (h *BetslipHandler) settlements(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	rows, err := h.Repo.ListSettlementRecords(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, map[string]any{"count": len(rows)})
}

func betslipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBetslipNotFound), errors.Is(err, service.ErrLegNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrAlreadyFinal),
		errors.Is(err, service.ErrNotMulti),
		errors.Is(err, service.ErrNotSingle),
		errors.Is(err, service.ErrLastLeg),
		errors.Is(err, service.ErrInvalidOdds),
		errors.Is(err, service.ErrInvalidStake),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrInvalidOutcome),
		errors.Is(err, service.ErrInvalidLegStatus):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
