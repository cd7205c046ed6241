package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the local profile row for an identity-provider account.
// Credentials and sessions live with the provider; we only keep what
// subscriptions and receipts need to join against.
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role      string    `gorm:"type:varchar(20);not null;default:user;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
