package models

import "time"

// SettlementRecord is the audit trail for settle/void actions: which
// outcome was applied and the reason the derivation (or the admin) gave.
type SettlementRecord struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	BetslipID uint64 `gorm:"not null;index"`
	Outcome   string `gorm:"type:varchar(10);not null;index"`
	Reason    string `gorm:"type:text"`
	Actor     string `gorm:"type:varchar(64)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (SettlementRecord) TableName() string {
	return "settlement_records"
}
