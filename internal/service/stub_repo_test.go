package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"crystalfootball/internal/models"
	"crystalfootball/internal/repository"
)

// stubRepo is an in-memory repository.Repository for service tests.
type stubRepo struct {
	users    map[string]*models.User
	packages map[string]*models.Package
	subs     []*models.Subscription
	receipts map[uint64]*models.PaymentReceipt
	betslips map[uint64]*models.Betslip
	legs     map[uint64]*models.BetslipLeg
	records  []*models.SettlementRecord

	nextID uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:    map[string]*models.User{},
		packages: map[string]*models.Package{},
		receipts: map[uint64]*models.PaymentReceipt{},
		betslips: map[uint64]*models.Betslip{},
		legs:     map[uint64]*models.BetslipLeg{},
	}
}

func (r *stubRepo) id() uint64 {
	r.nextID++
	return r.nextID
}

func (r *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (r *stubRepo) UpsertUser(ctx context.Context, item *models.User) error {
	r.users[item.ID] = item
	return nil
}

func (r *stubRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.users[id], nil
}

func (r *stubRepo) UpsertPackage(ctx context.Context, item *models.Package) error {
	r.packages[item.Code] = item
	return nil
}

func (r *stubRepo) GetPackageByCode(ctx context.Context, code string) (*models.Package, error) {
	return r.packages[code], nil
}

func (r *stubRepo) ListPackages(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	var out []models.Package
	for _, p := range r.packages {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TierRank < out[j].TierRank })
	return out, nil
}

func (r *stubRepo) InsertSubscription(ctx context.Context, item *models.Subscription) error {
	item.ID = r.id()
	r.subs = append(r.subs, item)
	return nil
}

func (r *stubRepo) GetActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	for _, s := range r.subs {
		if s.UserID == userID && s.Status == models.SubscriptionActive && s.EndAt.After(now) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubRepo) ExpireDueSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range r.subs {
		if s.Status == models.SubscriptionActive && !s.EndAt.After(now) {
			s.Status = models.SubscriptionExpired
			n++
		}
	}
	return n, nil
}

func (r *stubRepo) CancelActiveSubscriptions(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, s := range r.subs {
		if s.UserID == userID && s.Status == models.SubscriptionActive {
			s.Status = models.SubscriptionCancelled
			n++
		}
	}
	return n, nil
}

func (r *stubRepo) InsertReceipt(ctx context.Context, item *models.PaymentReceipt) error {
	item.ID = r.id()
	r.receipts[item.ID] = item
	return nil
}

func (r *stubRepo) GetReceiptByID(ctx context.Context, id uint64) (*models.PaymentReceipt, error) {
	rec, ok := r.receipts[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *stubRepo) ListReceipts(ctx context.Context, params repository.ListReceiptsParams) ([]models.PaymentReceipt, error) {
	var out []models.PaymentReceipt
	for _, rec := range r.receipts {
		if params.UserID != nil && rec.UserID != *params.UserID {
			continue
		}
		if params.Status != nil && rec.Status != *params.Status {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRepo) UpdateReceiptReview(ctx context.Context, id uint64, status string, reviewerID string, note *string, reviewedAt time.Time) error {
	rec, ok := r.receipts[id]
	if !ok {
		return nil
	}
	rec.Status = status
	rec.ReviewerID = &reviewerID
	rec.ReviewerNote = note
	rec.ReviewedAt = &reviewedAt
	return nil
}

func (r *stubRepo) InsertBetslip(ctx context.Context, item *models.Betslip) error {
	item.ID = r.id()
	for i := range item.Legs {
		item.Legs[i].ID = r.id()
		item.Legs[i].BetslipID = item.ID
		leg := item.Legs[i]
		r.legs[leg.ID] = &leg
	}
	cp := *item
	r.betslips[item.ID] = &cp
	return nil
}

func (r *stubRepo) UpdateBetslip(ctx context.Context, item *models.Betslip) error {
	cp := *item
	r.betslips[item.ID] = &cp
	return nil
}

func (r *stubRepo) GetBetslipByID(ctx context.Context, id uint64) (*models.Betslip, error) {
	bet, ok := r.betslips[id]
	if !ok {
		return nil, nil
	}
	cp := *bet
	legs, _ := r.ListLegsByBetslipID(ctx, id)
	cp.Legs = legs
	return &cp, nil
}

func (r *stubRepo) ListBetslips(ctx context.Context, params repository.ListBetslipsParams) ([]models.Betslip, error) {
	var out []models.Betslip
	for id := range r.betslips {
		bet, _ := r.GetBetslipByID(ctx, id)
		if params.PostedSince != nil && bet.PostedAt.Before(*params.PostedSince) {
			continue
		}
		if params.EventSince != nil && bet.EventTime.Before(*params.EventSince) {
			continue
		}
		out = append(out, *bet)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRepo) CountBetslips(ctx context.Context, params repository.ListBetslipsParams) (int64, error) {
	out, _ := r.ListBetslips(ctx, params)
	return int64(len(out)), nil
}

func (r *stubRepo) UpdateBetslipSettlement(ctx context.Context, id uint64, status string, outcome string, settledAt *time.Time) error {
	bet, ok := r.betslips[id]
	if !ok {
		return nil
	}
	bet.Status = status
	bet.Outcome = outcome
	bet.SettledAt = settledAt
	return nil
}

func (r *stubRepo) UpdateBetslipShape(ctx context.Context, id uint64, betType string, combinedOdds *decimal.Decimal) error {
	bet, ok := r.betslips[id]
	if !ok {
		return nil
	}
	bet.BetType = betType
	bet.CombinedOdds = combinedOdds
	return nil
}

func (r *stubRepo) InsertLeg(ctx context.Context, item *models.BetslipLeg) error {
	item.ID = r.id()
	cp := *item
	r.legs[item.ID] = &cp
	return nil
}

func (r *stubRepo) GetLegByID(ctx context.Context, id uint64) (*models.BetslipLeg, error) {
	leg, ok := r.legs[id]
	if !ok {
		return nil, nil
	}
	cp := *leg
	return &cp, nil
}

func (r *stubRepo) ListLegsByBetslipID(ctx context.Context, betslipID uint64) ([]models.BetslipLeg, error) {
	var out []models.BetslipLeg
	for _, leg := range r.legs {
		if leg.BetslipID == betslipID {
			out = append(out, *leg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *stubRepo) UpdateLegStatus(ctx context.Context, id uint64, status string, notes *string, settledAt *time.Time) error {
	leg, ok := r.legs[id]
	if !ok {
		return nil
	}
	leg.Status = status
	if notes != nil {
		leg.Notes = notes
	}
	leg.SettledAt = settledAt
	return nil
}

func (r *stubRepo) DeleteLeg(ctx context.Context, id uint64) error {
	delete(r.legs, id)
	return nil
}

func (r *stubRepo) InsertSettlementRecord(ctx context.Context, item *models.SettlementRecord) error {
	item.ID = r.id()
	r.records = append(r.records, item)
	return nil
}

func (r *stubRepo) ListSettlementRecords(ctx context.Context, betslipID uint64) ([]models.SettlementRecord, error) {
	var out []models.SettlementRecord
	for _, rec := range r.records {
		if rec.BetslipID == betslipID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

var _ repository.Repository = (*stubRepo)(nil)
