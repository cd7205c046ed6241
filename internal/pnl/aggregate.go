package pnl

import (
	"github.com/shopspring/decimal"

	"crystalfootball/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summary aggregates P&L over a collection of betslips. Percentage and
// average fields are rounded to 2 decimal places and default to zero
// when their denominator is empty.
//
// Denominators differ on purpose: WinRatePct divides by settled bets
// (outcome != pending, void included), AverageOdds by decided bets
// (won+lost only), AverageConfidence by every bet including pending.
type Summary struct {
	TotalBets int `json:"total_bets"`
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	Voids     int `json:"voids"`
	Pending   int `json:"pending"`

	TotalStaked   decimal.Decimal `json:"total_staked"`
	TotalReturned decimal.Decimal `json:"total_returned"`
	NetProfit     decimal.Decimal `json:"net_profit"`

	WinRatePct        decimal.Decimal `json:"win_rate_percentage"`
	ROIPct            decimal.Decimal `json:"roi_percentage"`
	AverageOdds       decimal.Decimal `json:"average_odds"`
	AverageConfidence decimal.Decimal `json:"average_confidence"`
}

// Aggregate runs a single pass over bets. Intended for the bounded
// batches the API serves (a few hundred rows), not database-scale
// aggregation; nothing is cached.
func Aggregate(bets []models.Betslip) Summary {
	s := Summary{
		TotalStaked:       decimal.Zero,
		TotalReturned:     decimal.Zero,
		NetProfit:         decimal.Zero,
		WinRatePct:        decimal.Zero,
		ROIPct:            decimal.Zero,
		AverageOdds:       decimal.Zero,
		AverageConfidence: decimal.Zero,
	}

	sumOdds := decimal.Zero
	sumConfidence := 0

	for _, b := range bets {
		s.TotalBets++
		sumConfidence += b.ConfidencePct

		r := OutcomePnL(b)
		s.TotalStaked = s.TotalStaked.Add(r.StakeUnits)
		s.TotalReturned = s.TotalReturned.Add(r.ReturnUnits)
		s.NetProfit = s.NetProfit.Add(r.ProfitUnits)

		switch b.Outcome {
		case models.OutcomeWon:
			s.Wins++
			sumOdds = sumOdds.Add(EffectiveOdds(b))
		case models.OutcomeLost:
			s.Losses++
			sumOdds = sumOdds.Add(EffectiveOdds(b))
		case models.OutcomeVoid:
			s.Voids++
		default:
			s.Pending++
		}
	}

	settled := s.Wins + s.Losses + s.Voids
	if settled > 0 {
		s.WinRatePct = decimal.NewFromInt(int64(s.Wins)).
			Div(decimal.NewFromInt(int64(settled))).
			Mul(hundred).Round(2)
	}
	if s.TotalStaked.Sign() > 0 {
		s.ROIPct = s.NetProfit.Div(s.TotalStaked).Mul(hundred).Round(2)
	}
	if decided := s.Wins + s.Losses; decided > 0 {
		s.AverageOdds = sumOdds.Div(decimal.NewFromInt(int64(decided))).Round(2)
	}
	if s.TotalBets > 0 {
		s.AverageConfidence = decimal.NewFromInt(int64(sumConfidence)).
			Div(decimal.NewFromInt(int64(s.TotalBets))).Round(2)
	}

	return s
}
