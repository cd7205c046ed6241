package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"crystalfootball/internal/models"
)

func TestCanAccessBetslip(t *testing.T) {
	tests := []struct {
		user     Tier
		required Tier
		want     bool
	}{
		{TierMonthly, TierMonthly, true},
		{TierMonthly, TierHalfSeason, false},
		{TierMonthly, TierFullSeason, false},
		{TierHalfSeason, TierMonthly, true},
		{TierHalfSeason, TierFullSeason, false},
		{TierFullSeason, TierMonthly, true},
		{TierFullSeason, TierFullSeason, true},
		{TierNone, TierMonthly, false},
		{Tier("gold"), TierMonthly, false},
		{TierFullSeason, Tier("gold"), false},
	}
	for _, tt := range tests {
		if got := CanAccessBetslip(tt.user, tt.required); got != tt.want {
			t.Fatalf("CanAccessBetslip(%q, %q) = %v, want %v", tt.user, tt.required, got, tt.want)
		}
	}
}

func TestFilterByTier(t *testing.T) {
	bets := []models.Betslip{
		{ID: 1, MinTier: string(TierMonthly)},
		{ID: 2, MinTier: string(TierFullSeason)},
		{ID: 3, MinTier: string(TierHalfSeason)},
	}

	got := FilterByTier(bets, TierHalfSeason)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("FilterByTier(half_season) = %v", ids(got))
	}
	if got := FilterByTier(bets, TierNone); got != nil {
		t.Fatalf("FilterByTier(none) = %v, want nil", ids(got))
	}
	if got := FilterByTier(bets, TierFullSeason); len(got) != 3 {
		t.Fatalf("FilterByTier(full_season) = %v, want all", ids(got))
	}
}

func ids(bets []models.Betslip) []uint64 {
	out := make([]uint64, 0, len(bets))
	for _, b := range bets {
		out = append(out, b.ID)
	}
	return out
}

func TestDaysUntilExpiry(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		exp  time.Time
		want int
	}{
		{"23h59m remaining rounds up", now.Add(24*time.Hour - time.Minute), 1},
		{"exactly now", now, 0},
		{"one day past", now.Add(-25 * time.Hour), -1},
		{"a week out", now.Add(7 * 24 * time.Hour), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntilExpiry(tt.exp, now); got != tt.want {
				t.Fatalf("DaysUntilExpiry = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsExpiringSoon(t *testing.T) {
	tests := []struct {
		days int
		want bool
	}{
		{8, false},
		{7, true},
		{1, true},
		{0, false},
		{-1, false},
	}
	for _, tt := range tests {
		if got := IsExpiringSoon(tt.days); got != tt.want {
			t.Fatalf("IsExpiringSoon(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestFormatExpiryMessage(t *testing.T) {
	if got := FormatExpiryMessage(-3); got != "Your subscription has expired" {
		t.Fatalf("expired message = %q", got)
	}
	if got := FormatExpiryMessage(0); got != "Your subscription expires today" {
		t.Fatalf("today message = %q", got)
	}
	if got := FormatExpiryMessage(1); got != "Your subscription expires tomorrow" {
		t.Fatalf("tomorrow message = %q", got)
	}
	if got := FormatExpiryMessage(5); got != "Your subscription expires in 5 days" {
		t.Fatalf("days message = %q", got)
	}
}

func eventAt(id uint64, et time.Time) models.Betslip {
	return models.Betslip{ID: id, EventTime: et}
}

func TestGroupBySchedule(t *testing.T) {
	// Thursday noon.
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	bets := []models.Betslip{
		eventAt(1, now.Add(3*time.Hour)),           // today
		eventAt(2, now.Add(26*time.Hour)),          // tomorrow (friday)
		eventAt(3, now.Add(2*24*time.Hour)),        // saturday, this week
		eventAt(4, now.Add(10*24*time.Hour)),       // next week, upcoming
		eventAt(5, now.Add(-2*24*time.Hour)),       // recent result
		eventAt(6, now.Add(-20*24*time.Hour)),      // too old, dropped
		eventAt(7, now.Add(-14*24*time.Hour+time.Hour)), // inside the 14-day window
	}

	groups := GroupBySchedule(bets, now)

	want := map[string][]uint64{
		BucketToday:    {1},
		BucketTomorrow: {2},
		BucketThisWeek: {3},
		BucketUpcoming: {4},
		BucketRecent:   {5, 7},
	}
	if len(groups) != len(want) {
		t.Fatalf("got %d buckets (%v), want %d", len(groups), keys(groups), len(want))
	}
	for label, wantIDs := range want {
		got := ids(groups[label])
		if len(got) != len(wantIDs) {
			t.Fatalf("%s = %v, want %v", label, got, wantIDs)
		}
		for i := range wantIDs {
			if got[i] != wantIDs[i] {
				t.Fatalf("%s = %v, want %v", label, got, wantIDs)
			}
		}
	}
}

func TestGroupBySchedule_EmptyBucketsOmitted(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	groups := GroupBySchedule([]models.Betslip{eventAt(1, now.Add(time.Hour))}, now)
	if len(groups) != 1 {
		t.Fatalf("got buckets %v, want only Today", keys(groups))
	}
	if _, ok := groups[BucketToday]; !ok {
		t.Fatalf("Today bucket missing: %v", keys(groups))
	}
}

func keys(m map[string][]models.Betslip) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

type stubSubs struct {
	sub *models.Subscription
	err error
}

func (s *stubSubs) GetActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	return s.sub, s.err
}

func TestCheckerActiveSubscription(t *testing.T) {
	end := time.Now().UTC().Add(10 * 24 * time.Hour)

	c := &Checker{Repo: &stubSubs{sub: &models.Subscription{
		UserID: "u1",
		Tier:   string(TierHalfSeason),
		Status: models.SubscriptionActive,
		EndAt:  end,
	}}}
	got := c.ActiveSubscription(context.Background(), "u1")
	if !got.HasActiveSubscription || got.Tier != TierHalfSeason {
		t.Fatalf("access = %+v", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(end) {
		t.Fatalf("expires = %v, want %s", got.ExpiresAt, end)
	}
}

func TestCheckerActiveSubscription_FailsOpenToNoAccess(t *testing.T) {
	tests := []struct {
		name string
		repo SubscriptionSource
	}{
		{"query error", &stubSubs{err: errors.New("db down")}},
		{"no row", &stubSubs{}},
		{"unknown tier", &stubSubs{sub: &models.Subscription{Tier: "gold", EndAt: time.Now().Add(time.Hour)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Checker{Repo: tt.repo}
			if got := c.ActiveSubscription(context.Background(), "u1"); got.HasActiveSubscription {
				t.Fatalf("access granted: %+v", got)
			}
		})
	}
}
