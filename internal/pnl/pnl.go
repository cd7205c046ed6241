// Package pnl computes profit/loss for betslips in stake units. All
// functions are pure and operate on in-memory rows the caller already
// fetched; nothing here touches the database.
//
// Error policy is deliberately split (and callers depend on the split):
// UnitWin and UnitLoss panic on invalid stake/odds because those
// invariants are enforced at betslip creation and a violation here is a
// programming error. Everything else returns safe zero values for the
// degenerate inputs that occur routinely (empty collections, pending
// bets, nothing staked).
package pnl

import (
	"fmt"

	"github.com/shopspring/decimal"

	"crystalfootball/internal/models"
)

// MinOdds is the exclusive lower bound for decimal odds. Odds at or
// below this never reach the unit helpers legally.
var MinOdds = decimal.NewFromFloat(1.01)

// UnitWin returns the total return (stake included) of a winning bet.
// Panics if stake <= 0 or odds <= MinOdds.
func UnitWin(stake, odds decimal.Decimal) decimal.Decimal {
	if stake.Sign() <= 0 {
		panic(fmt.Sprintf("pnl: invalid stake %s (must be > 0)", stake))
	}
	if odds.Cmp(MinOdds) <= 0 {
		panic(fmt.Sprintf("pnl: invalid odds %s (must be > %s)", odds, MinOdds))
	}
	return stake.Mul(odds)
}

// UnitLoss returns the loss of a losing bet as a negative number of
// units. Panics if stake <= 0.
func UnitLoss(stake decimal.Decimal) decimal.Decimal {
	if stake.Sign() <= 0 {
		panic(fmt.Sprintf("pnl: invalid stake %s (must be > 0)", stake))
	}
	return stake.Neg()
}

// EffectiveOdds resolves the odds a betslip pays at. Multi bets use the
// cached combined odds when present and fall back to OddsDecimal when
// not. The fallback is historical behavior: services recompute
// CombinedOdds on every leg change, so a multi row without it has been
// written around the service layer.
func EffectiveOdds(b models.Betslip) decimal.Decimal {
	if b.BetType == models.BetTypeMulti && b.CombinedOdds != nil {
		return *b.CombinedOdds
	}
	return b.OddsDecimal
}

// Result is the per-bet P&L triple, all in units.
type Result struct {
	StakeUnits  decimal.Decimal `json:"stake_units"`
	ReturnUnits decimal.Decimal `json:"return_units"`
	ProfitUnits decimal.Decimal `json:"profit_units"`
}

// OutcomePnL computes the P&L of one betslip from its outcome. Pending
// and void bets never panic regardless of their stake/odds; only the
// won/lost branches touch the panicking unit helpers.
func OutcomePnL(b models.Betslip) Result {
	switch b.Outcome {
	case models.OutcomeWon:
		ret := UnitWin(b.StakeUnits, EffectiveOdds(b))
		return Result{
			StakeUnits:  b.StakeUnits,
			ReturnUnits: ret,
			ProfitUnits: ret.Sub(b.StakeUnits),
		}
	case models.OutcomeLost:
		return Result{
			StakeUnits:  b.StakeUnits,
			ReturnUnits: decimal.Zero,
			ProfitUnits: UnitLoss(b.StakeUnits),
		}
	case models.OutcomeVoid:
		// Stake fully refunded.
		return Result{
			StakeUnits:  b.StakeUnits,
			ReturnUnits: b.StakeUnits,
			ProfitUnits: decimal.Zero,
		}
	default:
		return Result{
			StakeUnits:  b.StakeUnits,
			ReturnUnits: decimal.Zero,
			ProfitUnits: decimal.Zero,
		}
	}
}
