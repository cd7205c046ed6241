package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetslipLeg is one constituent selection of a multi-leg betslip. A leg
// is pending, won or lost; there is no leg-level void.
type BetslipLeg struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	BetslipID uint64 `gorm:"not null;index"`
	Position  int    `gorm:"not null"`

	Title       string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	OddsDecimal decimal.Decimal `gorm:"type:numeric(10,3);not null"`

	Status    string     `gorm:"type:varchar(10);not null;default:pending;index"`
	Notes     *string    `gorm:"type:text"`
	SettledAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (BetslipLeg) TableName() string {
	return "betslip_legs"
}
