package pnl

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"crystalfootball/internal/models"
)

func postedAt(b models.Betslip, t time.Time) models.Betslip {
	b.PostedAt = t
	return b
}

func TestStartOfWeek(t *testing.T) {
	// 2026-08-27 is a Thursday; its week starts Monday the 24th.
	thu := time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)
	got := startOfWeek(thu)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("startOfWeek = %s, want %s", got, want)
	}
	// A Monday is its own week start.
	if got := startOfWeek(want); !got.Equal(want) {
		t.Fatalf("startOfWeek(monday) = %s, want %s", got, want)
	}
	// Sunday still belongs to the preceding Monday.
	sun := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	if got := startOfWeek(sun); !got.Equal(want) {
		t.Fatalf("startOfWeek(sunday) = %s, want %s", got, want)
	}
}

func TestAggregateByWeek_BucketsAndOrder(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	thisWeek := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)
	bets := []models.Betslip{
		postedAt(slip(models.OutcomeWon, "1", "2.0"), thisWeek),
		postedAt(slip(models.OutcomeLost, "1", "2.0"), lastWeek),
	}

	weeks := AggregateByWeek(bets, now, 3)
	if len(weeks) != 3 {
		t.Fatalf("got %d weeks, want 3", len(weeks))
	}
	// Oldest first.
	if !weeks[0].Start.Before(weeks[1].Start) || !weeks[1].Start.Before(weeks[2].Start) {
		t.Fatalf("weeks not oldest-first: %s %s %s", weeks[0].Start, weeks[1].Start, weeks[2].Start)
	}
	if weeks[2].TotalBets != 1 || weeks[2].Wins != 1 {
		t.Fatalf("current week summary: %+v", weeks[2].Summary)
	}
	if weeks[1].TotalBets != 1 || weeks[1].Losses != 1 {
		t.Fatalf("previous week summary: %+v", weeks[1].Summary)
	}
	if weeks[0].TotalBets != 0 {
		t.Fatalf("oldest week should be empty: %+v", weeks[0].Summary)
	}
}

func TestAggregateByWeek_NoGapsNoDoubleCounting(t *testing.T) {
	// Per-week sums over the covered range must equal one Aggregate over
	// the full set: adjacent week bounds neither overlap nor leave gaps.
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	var bets []models.Betslip
	// One bet per day over the last 4 weeks, including boundary Mondays.
	for d := 0; d < 28; d++ {
		b := slip(models.OutcomeWon, "1", "2.0")
		bets = append(bets, postedAt(b, now.AddDate(0, 0, -d)))
	}

	whole := Aggregate(bets)
	weeks := AggregateByWeek(bets, now, 5)
	total, wins := 0, 0
	staked := decimal.Zero
	for _, w := range weeks {
		total += w.TotalBets
		wins += w.Wins
		staked = staked.Add(w.TotalStaked)
	}
	if total != whole.TotalBets || wins != whole.Wins {
		t.Fatalf("per-week totals %d/%d, whole %d/%d", total, wins, whole.TotalBets, whole.Wins)
	}
	if !staked.Equal(whole.TotalStaked) {
		t.Fatalf("per-week staked %s, whole %s", staked, whole.TotalStaked)
	}
}

func TestAggregateByMonth(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	bets := []models.Betslip{
		postedAt(slip(models.OutcomeWon, "1", "2.0"), time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
		postedAt(slip(models.OutcomeLost, "1", "2.0"), time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC)),
	}
	months := AggregateByMonth(bets, now, 2)
	if len(months) != 2 {
		t.Fatalf("got %d months, want 2", len(months))
	}
	if months[0].Label != "July 2026" || months[1].Label != "August 2026" {
		t.Fatalf("labels: %q %q", months[0].Label, months[1].Label)
	}
	if months[0].Losses != 1 || months[1].Wins != 1 {
		t.Fatalf("month buckets wrong: %+v %+v", months[0].Summary, months[1].Summary)
	}
}

func TestAggregateByPeriod_Defaults(t *testing.T) {
	if got := len(AggregateByWeek(nil, time.Now(), 0)); got != DefaultWeeks {
		t.Fatalf("default weeks = %d, want %d", got, DefaultWeeks)
	}
	if got := len(AggregateByMonth(nil, time.Now(), -1)); got != DefaultMonths {
		t.Fatalf("default months = %d, want %d", got, DefaultMonths)
	}
}
