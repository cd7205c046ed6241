package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"crystalfootball/internal/models"
)

// Repository is the persistence surface the services share. The gorm
// implementation lives in repository/gorm; tests swap in in-memory
// stubs.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Users (profile rows only; identity lives with the auth provider).
	UpsertUser(ctx context.Context, item *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Packages.
	UpsertPackage(ctx context.Context, item *models.Package) error
	GetPackageByCode(ctx context.Context, code string) (*models.Package, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]models.Package, error)

	// Subscriptions.
	InsertSubscription(ctx context.Context, item *models.Subscription) error
	GetActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error)
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	ExpireDueSubscriptions(ctx context.Context, now time.Time) (int64, error)
	CancelActiveSubscriptions(ctx context.Context, userID string) (int64, error)

	// Payment receipts.
	InsertReceipt(ctx context.Context, item *models.PaymentReceipt) error
	GetReceiptByID(ctx context.Context, id uint64) (*models.PaymentReceipt, error)
	ListReceipts(ctx context.Context, params ListReceiptsParams) ([]models.PaymentReceipt, error)
	UpdateReceiptReview(ctx context.Context, id uint64, status string, reviewerID string, note *string, reviewedAt time.Time) error

	// Betslips.
	InsertBetslip(ctx context.Context, item *models.Betslip) error
	UpdateBetslip(ctx context.Context, item *models.Betslip) error
	GetBetslipByID(ctx context.Context, id uint64) (*models.Betslip, error)
	ListBetslips(ctx context.Context, params ListBetslipsParams) ([]models.Betslip, error)
	CountBetslips(ctx context.Context, params ListBetslipsParams) (int64, error)
	UpdateBetslipSettlement(ctx context.Context, id uint64, status string, outcome string, settledAt *time.Time) error
	UpdateBetslipShape(ctx context.Context, id uint64, betType string, combinedOdds *decimal.Decimal) error

	// Legs.
	InsertLeg(ctx context.Context, item *models.BetslipLeg) error
	GetLegByID(ctx context.Context, id uint64) (*models.BetslipLeg, error)
	ListLegsByBetslipID(ctx context.Context, betslipID uint64) ([]models.BetslipLeg, error)
	UpdateLegStatus(ctx context.Context, id uint64, status string, notes *string, settledAt *time.Time) error
	DeleteLeg(ctx context.Context, id uint64) error

	// Settlement audit trail.
	InsertSettlementRecord(ctx context.Context, item *models.SettlementRecord) error
	ListSettlementRecords(ctx context.Context, betslipID uint64) ([]models.SettlementRecord, error)
}

type ListReceiptsParams struct {
	Limit  int
	Offset int
	UserID *string
	Status *string
}

type ListBetslipsParams struct {
	Limit   int
	Offset  int
	Status  *string
	Outcome *string
	League  *string
	IsVIP   *bool
	// PostedSince/PostedUntil bound PostedAt: since inclusive, until
	// exclusive.
	PostedSince *time.Time
	PostedUntil *time.Time
	// EventSince bounds EventTime (inclusive). Used by the feed, whose
	// retention window is about when the event happens, not when the
	// tip was posted.
	EventSince *time.Time
	WithLegs    bool
	OrderBy     string
	Asc         *bool
}
