package db

import (
	"crystalfootball/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.Subscription{},
		&models.PaymentReceipt{},
		&models.Betslip{},
		&models.BetslipLeg{},
		&models.SettlementRecord{},
	)
}
