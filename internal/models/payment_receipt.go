package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReceiptSubmitted = "submitted"
	ReceiptApproved  = "approved"
	ReceiptRejected  = "rejected"
)

// PaymentReceipt is one manually-reviewed proof of payment. FileURL is an
// opaque reference into external storage; this service never touches the
// file itself.
type PaymentReceipt struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	UserID      string          `gorm:"type:varchar(64);not null;index"`
	PackageCode string          `gorm:"type:varchar(30);not null;index"`
	AmountUSD   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Reference   string          `gorm:"type:varchar(120)"`
	FileURL     string          `gorm:"type:text"`

	Status       string     `gorm:"type:varchar(20);not null;default:submitted;index"`
	ReviewerID   *string    `gorm:"type:varchar(64)"`
	ReviewerNote *string    `gorm:"type:text"`
	ReviewedAt   *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (PaymentReceipt) TableName() string {
	return "payment_receipts"
}
