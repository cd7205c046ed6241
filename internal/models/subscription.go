package models

import "time"

const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// Subscription grants a user one tier for a bounded period. A row is
// only considered live when Status is active AND EndAt is in the future;
// the cron sweep moves overdue active rows to expired.
type Subscription struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	UserID      string `gorm:"type:varchar(64);not null;index"`
	PackageCode string `gorm:"type:varchar(30);not null;index"`
	Tier        string `gorm:"type:varchar(30);not null"`
	Status      string `gorm:"type:varchar(20);not null;default:pending;index"`

	StartAt time.Time `gorm:"type:timestamptz;not null"`
	EndAt   time.Time `gorm:"type:timestamptz;not null;index"`

	ReceiptID *uint64 `gorm:"index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
