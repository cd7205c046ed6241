package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is a purchasable subscription plan. Code doubles as the tier
// name: monthly < half_season < full_season, ranked by TierRank.
type Package struct {
	Code         string          `gorm:"type:varchar(30);primaryKey"`
	Name         string          `gorm:"type:varchar(100);not null"`
	TierRank     int             `gorm:"not null;index"`
	PriceUSD     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DurationDays int             `gorm:"not null"`
	Active       bool            `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Package) TableName() string {
	return "packages"
}
