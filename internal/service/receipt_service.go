package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crystalfootball/internal/models"
	"crystalfootball/internal/repository"
)

var (
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrReceiptReviewed = errors.New("receipt already reviewed")
	ErrPackageInactive = errors.New("package is not available")
)

// ReceiptService runs the manual payment-review workflow: members submit
// a proof of payment, an admin approves or rejects it, and approval
// activates the purchased subscription.
type ReceiptService struct {
	Repo   repository.Repository
	Subs   *SubscriptionService
	Logger *zap.Logger
}

type SubmitReceiptInput struct {
	PackageCode string          `json:"package_code"`
	AmountUSD   decimal.Decimal `json:"amount_usd"`
	Reference   string          `json:"reference"`
	FileURL     string          `json:"file_url"`
}

func (s *ReceiptService) Submit(ctx context.Context, userID string, in SubmitReceiptInput) (*models.PaymentReceipt, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("receipt service not configured")
	}
	pkg, err := s.Repo.GetPackageByCode(ctx, in.PackageCode)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if !pkg.Active {
		return nil, ErrPackageInactive
	}
	if in.AmountUSD.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}

	item := &models.PaymentReceipt{
		UserID:      userID,
		PackageCode: pkg.Code,
		AmountUSD:   in.AmountUSD,
		Reference:   strings.TrimSpace(in.Reference),
		FileURL:     strings.TrimSpace(in.FileURL),
		Status:      models.ReceiptSubmitted,
	}
	if err := s.Repo.InsertReceipt(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("receipt submitted",
			zap.Uint64("id", item.ID),
			zap.String("user_id", userID),
			zap.String("package", pkg.Code),
		)
	}
	return item, nil
}

// Approve marks the receipt approved and activates its subscription.
// Only a submitted receipt can be reviewed; review is one-shot.
func (s *ReceiptService) Approve(ctx context.Context, receiptID uint64, reviewerID string, note *string) (*models.PaymentReceipt, *models.Subscription, error) {
	if s == nil || s.Repo == nil || s.Subs == nil {
		return nil, nil, errors.New("receipt service not configured")
	}
	receipt, err := s.Repo.GetReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, nil, err
	}
	if receipt == nil {
		return nil, nil, ErrReceiptNotFound
	}
	if receipt.Status != models.ReceiptSubmitted {
		return nil, nil, ErrReceiptReviewed
	}

	now := time.Now().UTC()
	if err := s.Repo.UpdateReceiptReview(ctx, receiptID, models.ReceiptApproved, reviewerID, note, now); err != nil {
		return nil, nil, err
	}
	sub, err := s.Subs.ActivateFromReceipt(ctx, receipt)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.Repo.GetReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, nil, err
	}
	return out, sub, nil
}

func (s *ReceiptService) Reject(ctx context.Context, receiptID uint64, reviewerID string, note *string) (*models.PaymentReceipt, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("receipt service not configured")
	}
	receipt, err := s.Repo.GetReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, ErrReceiptNotFound
	}
	if receipt.Status != models.ReceiptSubmitted {
		return nil, ErrReceiptReviewed
	}
	now := time.Now().UTC()
	if err := s.Repo.UpdateReceiptReview(ctx, receiptID, models.ReceiptRejected, reviewerID, note, now); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("receipt rejected", zap.Uint64("id", receiptID), zap.String("reviewer", reviewerID))
	}
	return s.Repo.GetReceiptByID(ctx, receiptID)
}

func (s *ReceiptService) List(ctx context.Context, params repository.ListReceiptsParams) ([]models.PaymentReceipt, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("receipt service not configured")
	}
	return s.Repo.ListReceipts(ctx, params)
}
