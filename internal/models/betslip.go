package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	BetTypeSingle = "single"
	BetTypeMulti  = "multi"
)

// Administrative workflow state, independent of settlement outcome.
const (
	StatusPosted  = "posted"
	StatusSettled = "settled"
	StatusVoid    = "void"
)

// Settlement outcome. Legs never carry void; it only exists at the
// parent via an admin action.
const (
	OutcomePending = "pending"
	OutcomeWon     = "won"
	OutcomeLost    = "lost"
	OutcomeVoid    = "void"
)

// Betslip is a published wagering recommendation, single or multi-leg.
// Odds and stakes are validated at creation (odds > 1.01, stake > 0,
// confidence 0-100); downstream math assumes those invariants hold.
type Betslip struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Title     string `gorm:"type:varchar(200);not null"`
	League    string `gorm:"type:varchar(100);index"`
	HomeTeam  string `gorm:"type:varchar(100)"`
	AwayTeam  string `gorm:"type:varchar(100)"`
	Market    string `gorm:"type:varchar(100)"`
	Selection string `gorm:"type:text"`

	OddsDecimal   decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	StakeUnits    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ConfidencePct int             `gorm:"not null;default:0"`

	BetType string `gorm:"type:varchar(10);not null;default:single;index"`
	Status  string `gorm:"type:varchar(10);not null;default:posted;index"`
	Outcome string `gorm:"type:varchar(10);not null;default:pending;index"`

	MinTier string `gorm:"type:varchar(30);not null;default:monthly;index"`
	IsVIP   bool   `gorm:"column:is_vip;not null;default:false;index"`

	// Cached product of leg odds for multi bets. Recomputed on every leg
	// change; never trusted without recomputation (see pnl.EffectiveOdds).
	CombinedOdds *decimal.Decimal `gorm:"type:numeric(12,3)"`

	Tags datatypes.JSON `gorm:"type:jsonb"`

	EventTime time.Time  `gorm:"type:timestamptz;not null;index"`
	PostedAt  time.Time  `gorm:"type:timestamptz;not null;index"`
	SettledAt *time.Time `gorm:"type:timestamptz"`

	Legs []BetslipLeg `gorm:"foreignKey:BetslipID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Betslip) TableName() string {
	return "betslips"
}
