package pnl

import (
	"time"

	"crystalfootball/internal/models"
)

// Default trailing window sizes for the period aggregations.
const (
	DefaultWeeks  = 12
	DefaultMonths = 6
)

// PeriodSummary is one bucket of the trailing-period aggregations.
// Start is inclusive, End exclusive; bets are bucketed by PostedAt.
type PeriodSummary struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Summary
}

// AggregateByWeek aggregates the trailing `weeks` Monday-to-Sunday
// weeks relative to now, oldest first. weeks <= 0 falls back to
// DefaultWeeks. Recomputed in full on every call.
func AggregateByWeek(bets []models.Betslip, now time.Time, weeks int) []PeriodSummary {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	out := make([]PeriodSummary, 0, weeks)
	start := startOfWeek(now)
	for i := 0; i < weeks; i++ {
		end := start.AddDate(0, 0, 7)
		out = append(out, periodSummary(bets, start, end, "Week of "+start.Format("Jan 2, 2006")))
		start = start.AddDate(0, 0, -7)
	}
	reverse(out)
	return out
}

// AggregateByMonth aggregates the trailing `months` calendar months
// relative to now, oldest first. months <= 0 falls back to
// DefaultMonths.
func AggregateByMonth(bets []models.Betslip, now time.Time, months int) []PeriodSummary {
	if months <= 0 {
		months = DefaultMonths
	}
	out := make([]PeriodSummary, 0, months)
	start := startOfMonth(now)
	for i := 0; i < months; i++ {
		end := start.AddDate(0, 1, 0)
		out = append(out, periodSummary(bets, start, end, start.Format("January 2006")))
		start = start.AddDate(0, -1, 0)
	}
	reverse(out)
	return out
}

func periodSummary(bets []models.Betslip, start, end time.Time, label string) PeriodSummary {
	var in []models.Betslip
	for _, b := range bets {
		if !b.PostedAt.Before(start) && b.PostedAt.Before(end) {
			in = append(in, b)
		}
	}
	return PeriodSummary{
		Label:   label,
		Start:   start,
		End:     end,
		Summary: Aggregate(in),
	}
}

// startOfWeek returns midnight on the Monday of t's week, in t's
// location.
func startOfWeek(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -daysSinceMonday)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func reverse(s []PeriodSummary) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
