package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"crystalfootball/internal/auth"
	"crystalfootball/internal/models"
	"crystalfootball/internal/repository"
	"crystalfootball/internal/service"
)

type ReceiptHandler struct {
	Svc   *service.ReceiptService
	Admin gin.HandlerFunc
}

func (h *ReceiptHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/receipts")
	group.POST("", h.submit)
	group.GET("", h.list)

	review := r.Group("/api/v1/receipts")
	if h.Admin != nil {
		review.Use(h.Admin)
	}
	review.POST("/:id/approve", h.approve)
	review.POST("/:id/reject", h.reject)
}

type submitReceiptRequest struct {
	PackageCode string `json:"package_code"`
	AmountUSD   string `json:"amount_usd"`
	Reference   string `json:"reference"`
	FileURL     string `json:"file_url"`
}

func (h *ReceiptHandler) submit(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}
	var req submitReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.AmountUSD))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid amount_usd", nil)
		return
	}

	rec, err := h.Svc.Submit(c.Request.Context(), claims.UserID, service.SubmitReceiptInput{
		PackageCode: strings.TrimSpace(req.PackageCode),
		AmountUSD:   amount,
		Reference:   req.Reference,
		FileURL:     req.FileURL,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrPackageNotFound),
		errors.Is(err, service.ErrPackageInactive),
		errors.Is(err, service.ErrInvalidInput):
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rec, nil)
}

// list shows the caller's own receipts; admins see everyone's, with
// optional user_id and status filters.
func (h *ReceiptHandler) list(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	params := repository.ListReceiptsParams{
		Limit:  parseIntDefault(c.Query("limit"), 100),
		Offset: parseIntDefault(c.Query("offset"), 0),
	}
	if claims.Role == models.RoleAdmin {
		if v := strings.TrimSpace(c.Query("user_id")); v != "" {
			params.UserID = &v
		}
		if v := strings.TrimSpace(c.Query("status")); v != "" {
			params.Status = &v
		}
	} else {
		uid := claims.UserID
		params.UserID = &uid
	}

	rows, err := h.Svc.List(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, map[string]any{"count": len(rows)})
}

type reviewReceiptRequest struct {
	Note *string `json:"note"`
}

func (h *ReceiptHandler) approve(c *gin.Context) {
	h.review(c, true)
}

func (h *ReceiptHandler) reject(c *gin.Context) {
	h.review(c, false)
}

func (h *ReceiptHandler) review(c *gin.Context, approve bool) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req reviewReceiptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
	}

	if approve {
		rec, sub, err := h.Svc.Approve(c.Request.Context(), id, claims.UserID, req.Note)
		if err != nil {
			reviewError(c, err)
			return
		}
		Ok(c, gin.H{"receipt": rec, "subscription": sub}, nil)
		return
	}
	rec, err := h.Svc.Reject(c.Request.Context(), id, claims.UserID, req.Note)
	if err != nil {
		reviewError(c, err)
		return
	}
	Ok(c, rec, nil)
}

func reviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReceiptNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrReceiptReviewed), errors.Is(err, service.ErrPackageNotFound):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}

func parseIntDefault(v string, def int) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
