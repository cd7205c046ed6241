package access

import (
	"time"

	"crystalfootball/internal/models"
)

// Schedule bucket labels, in display order.
const (
	BucketToday    = "Today"
	BucketTomorrow = "Tomorrow"
	BucketThisWeek = "This Week"
	BucketUpcoming = "Upcoming"
	BucketRecent   = "Recent Results"
)

// RecentResultsDays bounds the trailing results window. Events older
// than this are dropped from the feed entirely; the archive lives in
// analytics, not the dashboard.
const RecentResultsDays = 14

// GroupBySchedule buckets bets by event time relative to now. Future
// events land in Today / Tomorrow / This Week / Upcoming; past events
// within the trailing window land in Recent Results. Empty buckets are
// omitted from the result.
func GroupBySchedule(bets []models.Betslip, now time.Time) map[string][]models.Betslip {
	out := map[string][]models.Betslip{}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	dayAfter := today.AddDate(0, 0, 2)
	weekEnd := startOfWeek(now).AddDate(0, 0, 7)
	recentCutoff := now.AddDate(0, 0, -RecentResultsDays)

	for _, b := range bets {
		et := b.EventTime
		switch {
		case et.Before(now):
			if et.Before(recentCutoff) {
				continue
			}
			out[BucketRecent] = append(out[BucketRecent], b)
		case et.Before(tomorrow):
			out[BucketToday] = append(out[BucketToday], b)
		case et.Before(dayAfter):
			out[BucketTomorrow] = append(out[BucketTomorrow], b)
		case et.Before(weekEnd):
			out[BucketThisWeek] = append(out[BucketThisWeek], b)
		default:
			out[BucketUpcoming] = append(out[BucketUpcoming], b)
		}
	}
	return out
}

func startOfWeek(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -daysSinceMonday)
}
