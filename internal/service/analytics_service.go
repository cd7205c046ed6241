package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"crystalfootball/internal/cache"
	"crystalfootball/internal/config"
	"crystalfootball/internal/models"
	"crystalfootball/internal/pnl"
	"crystalfootball/internal/repository"
)

const (
	cacheKeyOverview = "analytics:overview"
	cacheKeyWeekly   = "analytics:weekly"
	cacheKeyMonthly  = "analytics:monthly"
)

// AnalyticsService serves the public performance dashboard. Responses
// are cached as JSON; the cron refresh recomputes them so most requests
// never touch the database.
type AnalyticsService struct {
	Repo   repository.Repository
	Cache  cache.Store
	Config config.AnalyticsConfig
	Logger *zap.Logger

	TTL time.Duration
}

type Overview struct {
	pnl.Summary
	WindowDays  int       `json:"window_days"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (s *AnalyticsService) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	if s == nil || s.Repo == nil {
		return out, errors.New("analytics service not configured")
	}
	if hit, ok := cacheGet[Overview](ctx, s.Cache, cacheKeyOverview); ok {
		return hit, nil
	}
	bets, err := s.fetchWindow(ctx)
	if err != nil {
		return out, err
	}
	out = Overview{
		Summary:     pnl.Aggregate(bets),
		WindowDays:  s.Config.WindowDays,
		GeneratedAt: time.Now().UTC(),
	}
	s.cacheSet(ctx, cacheKeyOverview, out)
	return out, nil
}

func (s *AnalyticsService) Weekly(ctx context.Context) ([]pnl.PeriodSummary, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("analytics service not configured")
	}
	if hit, ok := cacheGet[[]pnl.PeriodSummary](ctx, s.Cache, cacheKeyWeekly); ok {
		return hit, nil
	}
	bets, err := s.fetchWindow(ctx)
	if err != nil {
		return nil, err
	}
	out := pnl.AggregateByWeek(bets, time.Now().UTC(), s.Config.Weeks)
	s.cacheSet(ctx, cacheKeyWeekly, out)
	return out, nil
}

func (s *AnalyticsService) Monthly(ctx context.Context) ([]pnl.PeriodSummary, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("analytics service not configured")
	}
	if hit, ok := cacheGet[[]pnl.PeriodSummary](ctx, s.Cache, cacheKeyMonthly); ok {
		return hit, nil
	}
	bets, err := s.fetchWindow(ctx)
	if err != nil {
		return nil, err
	}
	out := pnl.AggregateByMonth(bets, time.Now().UTC(), s.Config.Months)
	s.cacheSet(ctx, cacheKeyMonthly, out)
	return out, nil
}

// Refresh recomputes every cached view. Run from cron so the cache stays
// warm between TTL expiries.
func (s *AnalyticsService) Refresh(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return errors.New("analytics service not configured")
	}
	bets, err := s.fetchWindow(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	s.cacheSet(ctx, cacheKeyOverview, Overview{
		Summary:     pnl.Aggregate(bets),
		WindowDays:  s.Config.WindowDays,
		GeneratedAt: now,
	})
	s.cacheSet(ctx, cacheKeyWeekly, pnl.AggregateByWeek(bets, now, s.Config.Weeks))
	s.cacheSet(ctx, cacheKeyMonthly, pnl.AggregateByMonth(bets, now, s.Config.Months))
	if s.Logger != nil {
		s.Logger.Info("analytics refreshed", zap.Int("bets", len(bets)))
	}
	return nil
}

func (s *AnalyticsService) fetchWindow(ctx context.Context) ([]models.Betslip, error) {
	since := time.Now().UTC().AddDate(0, 0, -s.Config.WindowDays)
	return s.Repo.ListBetslips(ctx, repository.ListBetslipsParams{
		Limit:       s.Config.MaxRows,
		PostedSince: &since,
	})
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value any) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := s.Cache.Set(ctx, key, raw, ttl); err != nil && s.Logger != nil {
		s.Logger.Warn("analytics cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Cache errors degrade to a recompute, never to a request failure.
func cacheGet[T any](ctx context.Context, store cache.Store, key string) (T, bool) {
	var out T
	if store == nil {
		return out, false
	}
	raw, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}
