package pnl

import (
	"testing"

	"github.com/shopspring/decimal"

	"crystalfootball/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func slip(outcome string, stake, odds string) models.Betslip {
	return models.Betslip{
		BetType:     models.BetTypeSingle,
		Status:      models.StatusSettled,
		Outcome:     outcome,
		StakeUnits:  dec(stake),
		OddsDecimal: dec(odds),
	}
}

func TestUnitWin(t *testing.T) {
	got := UnitWin(dec("2"), dec("3.0"))
	if !got.Equal(dec("6")) {
		t.Fatalf("UnitWin(2, 3.0) = %s, want 6", got)
	}
	// Profit equals stake times net odds.
	stake, odds := dec("1.5"), dec("2.4")
	profit := UnitWin(stake, odds).Sub(stake)
	want := stake.Mul(odds.Sub(decimal.NewFromInt(1)))
	if !profit.Equal(want) {
		t.Fatalf("profit = %s, want %s", profit, want)
	}
}

func TestUnitWin_PanicsOnInvalid(t *testing.T) {
	tests := []struct {
		name  string
		stake string
		odds  string
	}{
		{"zero stake", "0", "2.0"},
		{"negative stake", "-1", "2.0"},
		{"odds at floor", "1", "1.01"},
		{"odds below floor", "1", "1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("UnitWin(%s, %s) did not panic", tt.stake, tt.odds)
				}
			}()
			UnitWin(dec(tt.stake), dec(tt.odds))
		})
	}
}

func TestUnitLoss(t *testing.T) {
	if got := UnitLoss(dec("3.5")); !got.Equal(dec("-3.5")) {
		t.Fatalf("UnitLoss(3.5) = %s, want -3.5", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("UnitLoss(0) did not panic")
		}
	}()
	UnitLoss(decimal.Zero)
}

func TestEffectiveOdds_MultiFallback(t *testing.T) {
	combined := dec("4.5")
	b := models.Betslip{BetType: models.BetTypeMulti, OddsDecimal: dec("2.0"), CombinedOdds: &combined}
	if got := EffectiveOdds(b); !got.Equal(combined) {
		t.Fatalf("EffectiveOdds = %s, want cached %s", got, combined)
	}
	// Pins the historical fallback: a multi row without cached combined
	// odds pays at its own odds column.
	b.CombinedOdds = nil
	if got := EffectiveOdds(b); !got.Equal(dec("2.0")) {
		t.Fatalf("EffectiveOdds fallback = %s, want 2.0", got)
	}
}

func TestOutcomePnL(t *testing.T) {
	tests := []struct {
		name   string
		bet    models.Betslip
		ret    string
		profit string
	}{
		{"won", slip(models.OutcomeWon, "2", "3.0"), "6", "4"},
		{"lost", slip(models.OutcomeLost, "2", "3.0"), "0", "-2"},
		{"void refunds stake", slip(models.OutcomeVoid, "5", "1.0"), "5", "0"},
		{"pending", slip(models.OutcomePending, "7", "2.5"), "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := OutcomePnL(tt.bet)
			if !r.ReturnUnits.Equal(dec(tt.ret)) {
				t.Fatalf("return = %s, want %s", r.ReturnUnits, tt.ret)
			}
			if !r.ProfitUnits.Equal(dec(tt.profit)) {
				t.Fatalf("profit = %s, want %s", r.ProfitUnits, tt.profit)
			}
			if !r.StakeUnits.Equal(tt.bet.StakeUnits) {
				t.Fatalf("stake = %s, want %s", r.StakeUnits, tt.bet.StakeUnits)
			}
		})
	}
}

func TestOutcomePnL_PendingAndVoidNeverPanic(t *testing.T) {
	// Pending/void rows may carry degenerate stake or odds without
	// tripping the unit helpers.
	for _, outcome := range []string{models.OutcomePending, models.OutcomeVoid} {
		b := models.Betslip{Outcome: outcome, StakeUnits: decimal.Zero, OddsDecimal: decimal.Zero}
		r := OutcomePnL(b)
		if !r.ProfitUnits.Equal(decimal.Zero) {
			t.Fatalf("%s profit = %s, want 0", outcome, r.ProfitUnits)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	if s.TotalBets != 0 || s.Wins != 0 || s.Losses != 0 || s.Voids != 0 || s.Pending != 0 {
		t.Fatalf("counts not zero: %+v", s)
	}
	for name, v := range map[string]decimal.Decimal{
		"win rate":   s.WinRatePct,
		"roi":        s.ROIPct,
		"avg odds":   s.AverageOdds,
		"confidence": s.AverageConfidence,
		"staked":     s.TotalStaked,
	} {
		if !v.Equal(decimal.Zero) {
			t.Fatalf("%s = %s, want 0", name, v)
		}
	}
}

func TestAggregate(t *testing.T) {
	bets := []models.Betslip{
		slip(models.OutcomeWon, "2", "3.0"),  // +4
		slip(models.OutcomeLost, "1", "2.0"), // -1
		slip(models.OutcomeVoid, "5", "1.5"), // 0
		slip(models.OutcomePending, "1", "2.0"),
	}
	bets[0].ConfidencePct = 80
	bets[1].ConfidencePct = 60
	bets[2].ConfidencePct = 40
	bets[3].ConfidencePct = 20

	s := Aggregate(bets)
	if s.TotalBets != 4 || s.Wins != 1 || s.Losses != 1 || s.Voids != 1 || s.Pending != 1 {
		t.Fatalf("counts: %+v", s)
	}
	if !s.NetProfit.Equal(dec("3")) {
		t.Fatalf("net profit = %s, want 3", s.NetProfit)
	}
	// Win rate over settled (won+lost+void = 3).
	if !s.WinRatePct.Equal(dec("33.33")) {
		t.Fatalf("win rate = %s, want 33.33", s.WinRatePct)
	}
	// ROI = 3 / 9 staked.
	if !s.ROIPct.Equal(dec("33.33")) {
		t.Fatalf("roi = %s, want 33.33", s.ROIPct)
	}
	// Average odds over decided only (3.0 + 2.0) / 2.
	if !s.AverageOdds.Equal(dec("2.5")) {
		t.Fatalf("avg odds = %s, want 2.5", s.AverageOdds)
	}
	// Average confidence over all four bets.
	if !s.AverageConfidence.Equal(dec("50")) {
		t.Fatalf("avg confidence = %s, want 50", s.AverageConfidence)
	}
}

func TestAggregate_MultiUsesCombinedOdds(t *testing.T) {
	combined := dec("6.0")
	b := models.Betslip{
		BetType:      models.BetTypeMulti,
		Outcome:      models.OutcomeWon,
		StakeUnits:   dec("1"),
		OddsDecimal:  dec("2.0"),
		CombinedOdds: &combined,
	}
	s := Aggregate([]models.Betslip{b})
	if !s.TotalReturned.Equal(dec("6")) {
		t.Fatalf("returned = %s, want 6", s.TotalReturned)
	}
	if !s.AverageOdds.Equal(dec("6")) {
		t.Fatalf("avg odds = %s, want 6", s.AverageOdds)
	}
}
