package pnl

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"crystalfootball/internal/models"
)

// CombinedOdds multiplies all leg odds. An empty leg list yields 1.0
// (the multiplicative identity); callers must reject empty-legs multi
// bets before they get this far.
func CombinedOdds(legs []models.BetslipLeg) decimal.Decimal {
	odds := decimal.NewFromInt(1)
	for _, leg := range legs {
		odds = odds.Mul(leg.OddsDecimal)
	}
	return odds
}

// Decision is the outcome the multi-leg derivation rule reached.
// Reason is a human-readable explanation kept for the settlement audit
// trail.
type Decision struct {
	ShouldSettle bool   `json:"should_settle"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
}

// ShouldSettleMultiLeg derives a multi bet's outcome from its legs:
// the first lost leg loses the whole bet without waiting for the rest,
// all legs won wins it, anything else stays pending. Legs have no void
// state; voiding happens at the parent only.
func ShouldSettleMultiLeg(legs []models.BetslipLeg) Decision {
	if len(legs) == 0 {
		return Decision{Outcome: models.OutcomePending, Reason: "no legs to settle"}
	}

	var lost []string
	pending := 0
	for _, leg := range legs {
		switch leg.Status {
		case models.OutcomeLost:
			lost = append(lost, leg.Title)
		case models.OutcomePending:
			pending++
		}
	}

	if len(lost) > 0 {
		return Decision{
			ShouldSettle: true,
			Outcome:      models.OutcomeLost,
			Reason:       fmt.Sprintf("lost leg(s): %s", strings.Join(lost, ", ")),
		}
	}
	if pending > 0 {
		return Decision{
			Outcome: models.OutcomePending,
			Reason:  fmt.Sprintf("%d of %d legs still pending", pending, len(legs)),
		}
	}
	return Decision{
		ShouldSettle: true,
		Outcome:      models.OutcomeWon,
		Reason:       fmt.Sprintf("all %d legs won", len(legs)),
	}
}

// LegSummary is a pure tally of leg statuses. Percentages are rounded
// to 2 decimal places and zero for an empty list.
type LegSummary struct {
	Total   int `json:"total"`
	Won     int `json:"won"`
	Lost    int `json:"lost"`
	Pending int `json:"pending"`

	WonPct     float64 `json:"won_percentage"`
	LostPct    float64 `json:"lost_percentage"`
	PendingPct float64 `json:"pending_percentage"`
}

func LegStatusSummary(legs []models.BetslipLeg) LegSummary {
	s := LegSummary{Total: len(legs)}
	for _, leg := range legs {
		switch leg.Status {
		case models.OutcomeWon:
			s.Won++
		case models.OutcomeLost:
			s.Lost++
		default:
			s.Pending++
		}
	}
	if s.Total == 0 {
		return s
	}
	total := float64(s.Total)
	s.WonPct = round2(float64(s.Won) / total * 100)
	s.LostPct = round2(float64(s.Lost) / total * 100)
	s.PendingPct = round2(float64(s.Pending) / total * 100)
	return s
}
