package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"crystalfootball/internal/access"
	"crystalfootball/internal/models"
	"crystalfootball/internal/repository"
)

// FeedService builds the member-facing betslip feed: recent rows,
// trimmed to what the member's tier may see, grouped by event schedule.
type FeedService struct {
	Repo   repository.Repository
	Logger *zap.Logger

	// Limit caps how many rows one feed fetch pulls. The cap applies
	// before tier filtering, so it must stay comfortably above the
	// live betslip count or a flood of gated rows could crowd lower
	// tiers out of their feed.
	Limit int
}

type Feed struct {
	Groups      map[string][]models.Betslip `json:"groups"`
	Tier        string                      `json:"tier"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// ForTier returns the schedule-grouped feed visible to the given tier.
// VIP rows stay in the feed for any subscribed tier; tier gating is
// per-betslip via min_tier. The retention window bounds event time,
// not posting time: a future event always shows no matter how far in
// advance it was posted, and only results older than the window drop.
func (s *FeedService) ForTier(ctx context.Context, tier access.Tier) (Feed, error) {
	if s == nil || s.Repo == nil {
		return Feed{}, errors.New("feed service not configured")
	}
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -access.RecentResultsDays)
	bets, err := s.Repo.ListBetslips(ctx, repository.ListBetslipsParams{
		Limit:      s.Limit,
		EventSince: &since,
		WithLegs:   true,
	})
	if err != nil {
		return Feed{}, err
	}
	visible := access.FilterByTier(bets, tier)
	return Feed{
		Groups:      access.GroupBySchedule(visible, now),
		Tier:        string(tier),
		GeneratedAt: now,
	}, nil
}

// Get returns one betslip if the tier may see it, nil otherwise.
func (s *FeedService) Get(ctx context.Context, id uint64, tier access.Tier) (*models.Betslip, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("feed service not configured")
	}
	bet, err := s.Repo.GetBetslipByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, nil
	}
	if !access.CanAccessBetslip(tier, access.ParseTier(bet.MinTier)) {
		if s.Logger != nil {
			s.Logger.Debug("betslip hidden from tier",
				zap.Uint64("id", id),
				zap.String("tier", string(tier)),
				zap.String("min_tier", bet.MinTier),
			)
		}
		return nil, nil
	}
	return bet, nil
}
