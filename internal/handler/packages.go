package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"crystalfootball/internal/access"
	"crystalfootball/internal/models"
	"crystalfootball/internal/repository"
)

type PackageHandler struct {
	Repo  repository.Repository
	Admin gin.HandlerFunc
}

func (h *PackageHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/packages", h.list)

	group := r.Group("/api/v1/packages")
	if h.Admin != nil {
		group.Use(h.Admin)
	}
	group.PUT("/:code", h.upsert)
}

func (h *PackageHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	rows, err := h.Repo.ListPackages(c.Request.Context(), true)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, nil)
}

type upsertPackageRequest struct {
	Name         string `json:"name"`
	PriceUSD     string `json:"price_usd"`
	DurationDays int    `json:"duration_days"`
	Active       *bool  `json:"active"`
}

func (h *PackageHandler) upsert(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	code := strings.TrimSpace(c.Param("code"))
	tier := access.ParseTier(code)
	if tier == access.TierNone {
		Error(c, http.StatusBadRequest, "code must be monthly, half_season or full_season", nil)
		return
	}
	var req upsertPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.PriceUSD))
	if err != nil || price.Sign() < 0 {
		Error(c, http.StatusBadRequest, "invalid price_usd", nil)
		return
	}
	if req.DurationDays <= 0 {
		Error(c, http.StatusBadRequest, "duration_days must be positive", nil)
		return
	}

	item := &models.Package{
		Code:         string(tier),
		Name:         strings.TrimSpace(req.Name),
		TierRank:     tier.Rank(),
		PriceUSD:     price,
		DurationDays: req.DurationDays,
		Active:       true,
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if err := h.Repo.UpsertPackage(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}
