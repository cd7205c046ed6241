package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"crystalfootball/internal/access"
	"crystalfootball/internal/models"
	"crystalfootball/internal/pnl"
	"crystalfootball/internal/repository"
)

// Validation errors surfaced to the admin API as 400s.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrBetslipNotFound  = errors.New("betslip not found")
	ErrLegNotFound      = errors.New("leg not found")
	ErrAlreadyFinal     = errors.New("betslip already settled or void")
	ErrNotMulti         = errors.New("betslip is not multi-leg")
	ErrNotSingle        = errors.New("betslip is not single")
	ErrLastLeg          = errors.New("a multi-leg betslip must keep at least one leg")
	ErrInvalidOdds      = errors.New("odds must be greater than 1.01")
	ErrInvalidStake     = errors.New("stake must be greater than 0")
	ErrInvalidTier      = errors.New("unknown minimum tier")
	ErrInvalidOutcome   = errors.New("invalid outcome")
	ErrInvalidLegStatus = errors.New("invalid leg status")
)

// BetslipService owns the betslip lifecycle: creation validates the
// odds/stake invariants the P&L engine assumes, and every leg change
// recomputes combined odds and re-derives the parent outcome. Settled
// and void are terminal; nothing here transitions out of them.
type BetslipService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

type LegInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	OddsDecimal decimal.Decimal `json:"odds_decimal"`
}

type CreateBetslipInput struct {
	Title         string          `json:"title"`
	League        string          `json:"league"`
	HomeTeam      string          `json:"home_team"`
	AwayTeam      string          `json:"away_team"`
	Market        string          `json:"market"`
	Selection     string          `json:"selection"`
	OddsDecimal   decimal.Decimal `json:"odds_decimal"`
	StakeUnits    decimal.Decimal `json:"stake_units"`
	ConfidencePct int             `json:"confidence_pct"`
	MinTier       string          `json:"min_tier"`
	IsVIP         bool            `json:"is_vip"`
	Tags          json.RawMessage `json:"tags"`
	EventTime     time.Time       `json:"event_time"`
	Legs          []LegInput      `json:"legs"`
}

func (s *BetslipService) Create(ctx context.Context, in CreateBetslipInput) (*models.Betslip, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("betslip service not configured")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	if in.StakeUnits.Sign() <= 0 {
		return nil, ErrInvalidStake
	}
	if in.OddsDecimal.Cmp(pnl.MinOdds) <= 0 {
		return nil, ErrInvalidOdds
	}
	if in.ConfidencePct < 0 || in.ConfidencePct > 100 {
		return nil, fmt.Errorf("%w: confidence must be between 0 and 100", ErrInvalidInput)
	}
	tier := access.ParseTier(in.MinTier)
	if tier == access.TierNone {
		return nil, ErrInvalidTier
	}

	item := &models.Betslip{
		Title:         strings.TrimSpace(in.Title),
		League:        strings.TrimSpace(in.League),
		HomeTeam:      strings.TrimSpace(in.HomeTeam),
		AwayTeam:      strings.TrimSpace(in.AwayTeam),
		Market:        strings.TrimSpace(in.Market),
		Selection:     in.Selection,
		OddsDecimal:   in.OddsDecimal,
		StakeUnits:    in.StakeUnits,
		ConfidencePct: in.ConfidencePct,
		BetType:       models.BetTypeSingle,
		Status:        models.StatusPosted,
		Outcome:       models.OutcomePending,
		MinTier:       string(tier),
		IsVIP:         in.IsVIP,
		EventTime:     in.EventTime,
		PostedAt:      time.Now().UTC(),
	}
	if len(in.Tags) > 0 {
		if !json.Valid(in.Tags) {
			return nil, fmt.Errorf("%w: tags must be valid json", ErrInvalidInput)
		}
		item.Tags = datatypes.JSON(in.Tags)
	}

	if len(in.Legs) > 0 {
		if len(in.Legs) < 2 {
			return nil, fmt.Errorf("%w: a multi-leg betslip needs at least two legs", ErrInvalidInput)
		}
		item.BetType = models.BetTypeMulti
		for i, leg := range in.Legs {
			if strings.TrimSpace(leg.Title) == "" {
				return nil, fmt.Errorf("%w: leg %d title required", ErrInvalidInput, i+1)
			}
			if leg.OddsDecimal.Cmp(pnl.MinOdds) <= 0 {
				return nil, fmt.Errorf("leg %d: %w", i+1, ErrInvalidOdds)
			}
			item.Legs = append(item.Legs, models.BetslipLeg{
				Position:    i + 1,
				Title:       strings.TrimSpace(leg.Title),
				Description: leg.Description,
				OddsDecimal: leg.OddsDecimal,
				Status:      models.OutcomePending,
			})
		}
		combined := pnl.CombinedOdds(item.Legs)
		item.CombinedOdds = &combined
	}

	if err := s.Repo.InsertBetslip(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("betslip created",
			zap.Uint64("id", item.ID),
			zap.String("type", item.BetType),
			zap.String("min_tier", item.MinTier),
		)
	}
	return item, nil
}

type UpdateBetslipInput struct {
	Title         *string          `json:"title"`
	League        *string          `json:"league"`
	Selection     *string          `json:"selection"`
	OddsDecimal   *decimal.Decimal `json:"odds_decimal"`
	StakeUnits    *decimal.Decimal `json:"stake_units"`
	ConfidencePct *int             `json:"confidence_pct"`
	MinTier       *string          `json:"min_tier"`
	IsVIP         *bool            `json:"is_vip"`
	// Tags replaces the whole set when present; nil leaves it alone.
	Tags      json.RawMessage `json:"tags"`
	EventTime *time.Time      `json:"event_time"`
}

// Update edits the mutable fields of a posted betslip. Odds edits apply
// to singles only; multi odds are always derived from the legs.
func (s *BetslipService) Update(ctx context.Context, betslipID uint64, in UpdateBetslipInput) (*models.Betslip, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("betslip service not configured")
	}
	bet, err := s.Repo.GetBetslipByID(ctx, betslipID)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, ErrBetslipNotFound
	}
	if bet.Status != models.StatusPosted {
		return nil, ErrAlreadyFinal
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title required", ErrInvalidInput)
		}
		bet.Title = strings.TrimSpace(*in.Title)
	}
	if in.League != nil {
		bet.League = strings.TrimSpace(*in.League)
	}
	if in.Selection != nil {
		bet.Selection = *in.Selection
	}
	if in.OddsDecimal != nil {
		if bet.BetType != models.BetTypeSingle {
			return nil, ErrNotSingle
		}
		if in.OddsDecimal.Cmp(pnl.MinOdds) <= 0 {
			return nil, ErrInvalidOdds
		}
		bet.OddsDecimal = *in.OddsDecimal
	}
	if in.StakeUnits != nil {
		if in.StakeUnits.Sign() <= 0 {
			return nil, ErrInvalidStake
		}
		bet.StakeUnits = *in.StakeUnits
	}
	if in.ConfidencePct != nil {
		if *in.ConfidencePct < 0 || *in.ConfidencePct > 100 {
			return nil, fmt.Errorf("%w: confidence must be between 0 and 100", ErrInvalidInput)
		}
		bet.ConfidencePct = *in.ConfidencePct
	}
	if in.MinTier != nil {
		tier := access.ParseTier(*in.MinTier)
		if tier == access.TierNone {
			return nil, ErrInvalidTier
		}
		bet.MinTier = string(tier)
	}
	if in.IsVIP != nil {
		bet.IsVIP = *in.IsVIP
	}
	if in.Tags != nil {
		if !json.Valid(in.Tags) {
			return nil, fmt.Errorf("%w: tags must be valid json", ErrInvalidInput)
		}
		bet.Tags = datatypes.JSON(in.Tags)
	}
	if in.EventTime != nil {
		bet.EventTime = in.EventTime.UTC()
	}

	if err := s.Repo.UpdateBetslip(ctx, bet); err != nil {
		return nil, err
	}
	return s.Repo.GetBetslipByID(ctx, betslipID)
}

// UpdateLegStatus applies one leg result and re-derives the parent:
// first lost leg settles the bet as lost immediately, all legs won
// settles it as won, otherwise it stays posted/pending. The derived
// reason is persisted to the audit trail.
func (s *BetslipService) UpdateLegStatus(ctx context.Context, betslipID, legID uint64, status string, notes *string, actor string) (*models.Betslip, pnl.Decision, error) {
	var decision pnl.Decision
	if s == nil || s.Repo == nil {
		return nil, decision, errors.New("betslip service not configured")
	}
	switch status {
	case models.OutcomePending, models.OutcomeWon, models.OutcomeLost:
	default:
		// No leg-level void: only the parent can be voided.
		return nil, decision, ErrInvalidLegStatus
	}

	bet, err := s.Repo.GetBetslipByID(ctx, betslipID)
	if err != nil {
		return nil, decision, err
	}
	if bet == nil {
		return nil, decision, ErrBetslipNotFound
	}
	if bet.Status != models.StatusPosted {
		return nil, decision, ErrAlreadyFinal
	}
	if bet.BetType != models.BetTypeMulti {
		return nil, decision, ErrNotMulti
	}
	leg, err := s.Repo.GetLegByID(ctx, legID)
	if err != nil {
		return nil, decision, err
	}
	if leg == nil || leg.BetslipID != betslipID {
		return nil, decision, ErrLegNotFound
	}

	var settledAt *time.Time
	if status != models.OutcomePending {
		now := time.Now().UTC()
		settledAt = &now
	}
	if err := s.Repo.UpdateLegStatus(ctx, legID, status, notes, settledAt); err != nil {
		return nil, decision, err
	}

	legs, err := s.Repo.ListLegsByBetslipID(ctx, betslipID)
	if err != nil {
		return nil, decision, err
	}
	combined := pnl.CombinedOdds(legs)
	if err := s.Repo.UpdateBetslipShape(ctx, betslipID, models.BetTypeMulti, &combined); err != nil {
		return nil, decision, err
	}

	decision = pnl.ShouldSettleMultiLeg(legs)
	if decision.ShouldSettle {
		now := time.Now().UTC()
		if err := s.Repo.UpdateBetslipSettlement(ctx, betslipID, models.StatusSettled, decision.Outcome, &now); err != nil {
			return nil, decision, err
		}
		if err := s.Repo.InsertSettlementRecord(ctx, &models.SettlementRecord{
			BetslipID: betslipID,
			Outcome:   decision.Outcome,
			Reason:    decision.Reason,
			Actor:     actor,
		}); err != nil && s.Logger != nil {
			s.Logger.Warn("settlement record insert failed", zap.Uint64("betslip_id", betslipID), zap.Error(err))
		}
		if s.Logger != nil {
			s.Logger.Info("betslip settled",
				zap.Uint64("id", betslipID),
				zap.String("outcome", decision.Outcome),
				zap.String("reason", decision.Reason),
			)
		}
	}

	out, err := s.Repo.GetBetslipByID(ctx, betslipID)
	if err != nil {
		return nil, decision, err
	}
	return out, decision, nil
}

// AddLeg appends a selection to a posted multi-leg betslip and
// refreshes the combined odds.
func (s *BetslipService) AddLeg(ctx context.Context, betslipID uint64, in LegInput) (*models.Betslip, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("betslip service not configured")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: leg title required", ErrInvalidInput)
	}
	if in.OddsDecimal.Cmp(pnl.MinOdds) <= 0 {
		return nil, ErrInvalidOdds
	}
	bet, err := s.Repo.GetBetslipByID(ctx, betslipID)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, ErrBetslipNotFound
	}
	if bet.Status != models.StatusPosted {
		return nil, ErrAlreadyFinal
	}
	if bet.BetType != models.BetTypeMulti {
		return nil, ErrNotMulti
	}

	leg := &models.BetslipLeg{
		BetslipID:   betslipID,
		Position:    len(bet.Legs) + 1,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		OddsDecimal: in.OddsDecimal,
		Status:      models.OutcomePending,
	}
	if err := s.Repo.InsertLeg(ctx, leg); err != nil {
		return nil, err
	}
	legs, err := s.Repo.ListLegsByBetslipID(ctx, betslipID)
	if err != nil {
		return nil, err
	}
	combined := pnl.CombinedOdds(legs)
	if err := s.Repo.UpdateBetslipShape(ctx, betslipID, models.BetTypeMulti, &combined); err != nil {
		return nil, err
	}
	return s.Repo.GetBetslipByID(ctx, betslipID)
}

// RemoveLeg drops a selection from a posted multi-leg betslip. The
// last leg can never be removed, and a bet left with exactly one leg
// demotes to single, adopting that leg's odds so settlement pays at
// the right price.
func (s *BetslipService) RemoveLeg(ctx context.Context, betslipID, legID uint64) (*models.Betslip, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("betslip service not configured")
	}
	bet, err := s.Repo.GetBetslipByID(ctx, betslipID)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, ErrBetslipNotFound
	}
	if bet.Status != models.StatusPosted {
		return nil, ErrAlreadyFinal
	}
	if bet.BetType != models.BetTypeMulti {
		return nil, ErrNotMulti
	}
	if len(bet.Legs) <= 1 {
		return nil, ErrLastLeg
	}
	var target *models.BetslipLeg
	for i := range bet.Legs {
		if bet.Legs[i].ID == legID {
			target = &bet.Legs[i]
			break
		}
	}
	if target == nil {
		return nil, ErrLegNotFound
	}

	if err := s.Repo.DeleteLeg(ctx, legID); err != nil {
		return nil, err
	}
	legs, err := s.Repo.ListLegsByBetslipID(ctx, betslipID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 1 {
		bet.BetType = models.BetTypeSingle
		bet.OddsDecimal = legs[0].OddsDecimal
		bet.CombinedOdds = nil
		if err := s.Repo.UpdateBetslip(ctx, bet); err != nil {
			return nil, err
		}
	} else {
		combined := pnl.CombinedOdds(legs)
		if err := s.Repo.UpdateBetslipShape(ctx, betslipID, models.BetTypeMulti, &combined); err != nil {
			return nil, err
		}
	}
	return s.Repo.GetBetslipByID(ctx, betslipID)
}

// SettleSingle records the result of a single bet.
func (s *BetslipService) SettleSingle(ctx context.Context, betslipID uint64, outcome string, actor string) (*models.Betslip, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("betslip service not configured")
	}
	if outcome != models.OutcomeWon && outcome != models.OutcomeLost {
		return nil, ErrInvalidOutcome
	}
	bet, err := s.Repo.GetBetslipByID(ctx, betslipID)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, ErrBetslipNotFound
	}
	if bet.Status != models.StatusPosted {
		return nil, ErrAlreadyFinal
	}
	if bet.BetType != models.BetTypeSingle {
		return nil, ErrNotSingle
	}

	now := time.Now().UTC()
	if err := s.Repo.UpdateBetslipSettlement(ctx, betslipID, models.StatusSettled, outcome, &now); err != nil {
		return nil, err
	}
	if err := s.Repo.InsertSettlementRecord(ctx, &models.SettlementRecord{
		BetslipID: betslipID,
		Outcome:   outcome,
		Reason:    "settled by admin",
		Actor:     actor,
	}); err != nil && s.Logger != nil {
		s.Logger.Warn("settlement record insert failed", zap.Uint64("betslip_id", betslipID), zap.Error(err))
	}
	return s.Repo.GetBetslipByID(ctx, betslipID)
}

// Void cancels a posted bet. Void lives only at the parent; legs keep
// whatever state they had for the audit trail.
func (s *BetslipService) Void(ctx context.Context, betslipID uint64, reason string, actor string) (*models.Betslip, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("betslip service not configured")
	}
	bet, err := s.Repo.GetBetslipByID(ctx, betslipID)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, ErrBetslipNotFound
	}
	if bet.Status != models.StatusPosted {
		return nil, ErrAlreadyFinal
	}

	now := time.Now().UTC()
	if err := s.Repo.UpdateBetslipSettlement(ctx, betslipID, models.StatusVoid, models.OutcomeVoid, &now); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		reason = "voided by admin"
	}
	if err := s.Repo.InsertSettlementRecord(ctx, &models.SettlementRecord{
		BetslipID: betslipID,
		Outcome:   models.OutcomeVoid,
		Reason:    reason,
		Actor:     actor,
	}); err != nil && s.Logger != nil {
		s.Logger.Warn("settlement record insert failed", zap.Uint64("betslip_id", betslipID), zap.Error(err))
	}
	return s.Repo.GetBetslipByID(ctx, betslipID)
}
