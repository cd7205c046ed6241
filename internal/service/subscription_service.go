package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"crystalfootball/internal/models"
	"crystalfootball/internal/repository"
)

var ErrPackageNotFound = errors.New("package not found")

// SubscriptionService activates subscriptions from approved receipts and
// runs the expiry sweep. A user holds at most one live subscription at a
// time; activating a new one cancels whatever was active.
type SubscriptionService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// ActivateFromReceipt grants the receipt's package starting now. The
// package code doubles as the tier recorded on the subscription row.
func (s *SubscriptionService) ActivateFromReceipt(ctx context.Context, receipt *models.PaymentReceipt) (*models.Subscription, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("subscription service not configured")
	}
	pkg, err := s.Repo.GetPackageByCode(ctx, receipt.PackageCode)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	if n, err := s.Repo.CancelActiveSubscriptions(ctx, receipt.UserID); err != nil {
		return nil, err
	} else if n > 0 && s.Logger != nil {
		s.Logger.Info("superseded active subscriptions",
			zap.String("user_id", receipt.UserID),
			zap.Int64("cancelled", n),
		)
	}

	now := time.Now().UTC()
	receiptID := receipt.ID
	sub := &models.Subscription{
		UserID:      receipt.UserID,
		PackageCode: pkg.Code,
		Tier:        pkg.Code,
		Status:      models.SubscriptionActive,
		StartAt:     now,
		EndAt:       now.AddDate(0, 0, pkg.DurationDays),
		ReceiptID:   &receiptID,
	}
	if err := s.Repo.InsertSubscription(ctx, sub); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("subscription activated",
			zap.String("user_id", sub.UserID),
			zap.String("tier", sub.Tier),
			zap.Time("end_at", sub.EndAt),
		)
	}
	return sub, nil
}

// ListForUser returns the user's subscription history, newest first.
func (s *SubscriptionService) ListForUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("subscription service not configured")
	}
	return s.Repo.ListSubscriptionsByUser(ctx, userID)
}

// SweepExpired marks overdue active subscriptions expired. Run from cron.
func (s *SubscriptionService) SweepExpired(ctx context.Context) (int64, error) {
	if s == nil || s.Repo == nil {
		return 0, errors.New("subscription service not configured")
	}
	n, err := s.Repo.ExpireDueSubscriptions(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("expired subscriptions swept", zap.Int64("count", n))
	}
	return n, nil
}
