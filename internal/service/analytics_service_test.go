package service

import (
	"context"
	"testing"
	"time"

	"crystalfootball/internal/access"
	"crystalfootball/internal/cache"
	"crystalfootball/internal/config"
	"crystalfootball/internal/models"
)

func seedSettledBets(repo *stubRepo) {
	ctx := context.Background()
	now := time.Now().UTC()
	svc := &BetslipService{Repo: repo}

	for i, outcome := range []string{models.OutcomeWon, models.OutcomeLost, models.OutcomeWon} {
		in := singleInput()
		in.EventTime = now.AddDate(0, 0, -i-1)
		bet, _ := svc.Create(ctx, in)
		svc.SettleSingle(ctx, bet.ID, outcome, "admin")
	}
}

func analyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{WindowDays: 90, MaxRows: 500, Weeks: 12, Months: 6}
}

func TestAnalyticsOverview(t *testing.T) {
	repo := newStubRepo()
	seedSettledBets(repo)
	svc := &AnalyticsService{Repo: repo, Config: analyticsConfig()}

	out, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.TotalBets != 3 || out.Wins != 2 || out.Losses != 1 {
		t.Fatalf("overview = %+v", out.Summary)
	}
	if out.WindowDays != 90 {
		t.Fatalf("window = %d, want 90", out.WindowDays)
	}
}

func TestAnalyticsCacheServesSecondRead(t *testing.T) {
	repo := newStubRepo()
	seedSettledBets(repo)
	svc := &AnalyticsService{
		Repo:   repo,
		Cache:  cache.NewMemoryStore(),
		Config: analyticsConfig(),
		TTL:    time.Minute,
	}
	ctx := context.Background()

	first, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("first Overview: %v", err)
	}

	// Seed more bets; a cached read must keep serving the old view.
	seedSettledBets(repo)
	second, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("second Overview: %v", err)
	}
	if second.TotalBets != first.TotalBets {
		t.Fatalf("cached read recomputed: %d vs %d", second.TotalBets, first.TotalBets)
	}

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	third, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("third Overview: %v", err)
	}
	if third.TotalBets != 6 {
		t.Fatalf("after refresh TotalBets = %d, want 6", third.TotalBets)
	}
}

func TestAnalyticsPeriods(t *testing.T) {
	repo := newStubRepo()
	seedSettledBets(repo)
	svc := &AnalyticsService{Repo: repo, Config: analyticsConfig()}
	ctx := context.Background()

	weeks, err := svc.Weekly(ctx)
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if len(weeks) != 12 {
		t.Fatalf("weeks = %d, want 12", len(weeks))
	}
	months, err := svc.Monthly(ctx)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if len(months) != 6 {
		t.Fatalf("months = %d, want 6", len(months))
	}
}

func TestFeedFiltersByTier(t *testing.T) {
	repo := newStubRepo()
	svc := &BetslipService{Repo: repo}
	feed := &FeedService{Repo: repo, Limit: 100}
	ctx := context.Background()

	monthly := singleInput()
	monthly.Title = "Monthly pick"
	mBet, _ := svc.Create(ctx, monthly)

	premium := singleInput()
	premium.Title = "Full season pick"
	premium.MinTier = "full_season"
	pBet, _ := svc.Create(ctx, premium)

	out, err := feed.ForTier(ctx, access.TierMonthly)
	if err != nil {
		t.Fatalf("ForTier: %v", err)
	}
	var total int
	for _, group := range out.Groups {
		total += len(group)
	}
	if total != 1 {
		t.Fatalf("monthly feed rows = %d, want 1", total)
	}

	got, err := feed.Get(ctx, pBet.ID, access.TierMonthly)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("monthly tier should not see full_season bet")
	}
	got, err = feed.Get(ctx, mBet.ID, access.TierMonthly)
	if err != nil || got == nil {
		t.Fatalf("monthly tier should see monthly bet: %v %v", got, err)
	}
	if got, _ := feed.Get(ctx, pBet.ID, access.TierFullSeason); got == nil {
		t.Fatalf("full_season tier should see its bet")
	}
}

func TestFeedKeepsEarlyPostedFutureEvents(t *testing.T) {
	repo := newStubRepo()
	feed := &FeedService{Repo: repo, Limit: 100}
	ctx := context.Background()
	now := time.Now().UTC()

	// Season future: posted well before the retention window, event
	// still ahead. Retention bounds event time, not posting time.
	early := models.Betslip{
		Title:       "Title winner",
		OddsDecimal: dec("6.0"),
		StakeUnits:  dec("1"),
		BetType:     models.BetTypeSingle,
		Status:      models.StatusPosted,
		Outcome:     models.OutcomePending,
		MinTier:     "monthly",
		EventTime:   now.AddDate(0, 0, 10),
		PostedAt:    now.AddDate(0, 0, -20),
	}
	if err := repo.InsertBetslip(ctx, &early); err != nil {
		t.Fatalf("InsertBetslip: %v", err)
	}

	stale := models.Betslip{
		Title:       "Old result",
		OddsDecimal: dec("1.8"),
		StakeUnits:  dec("1"),
		BetType:     models.BetTypeSingle,
		Status:      models.StatusSettled,
		Outcome:     models.OutcomeWon,
		MinTier:     "monthly",
		EventTime:   now.AddDate(0, 0, -20),
		PostedAt:    now.AddDate(0, 0, -21),
	}
	if err := repo.InsertBetslip(ctx, &stale); err != nil {
		t.Fatalf("InsertBetslip: %v", err)
	}

	out, err := feed.ForTier(ctx, access.TierMonthly)
	if err != nil {
		t.Fatalf("ForTier: %v", err)
	}
	upcoming := out.Groups[access.BucketUpcoming]
	if len(upcoming) != 1 || upcoming[0].ID != early.ID {
		t.Fatalf("upcoming = %+v, want the early-posted future bet", upcoming)
	}
	for bucket, group := range out.Groups {
		for _, b := range group {
			if b.ID == stale.ID {
				t.Fatalf("stale result leaked into bucket %q", bucket)
			}
		}
	}
}
