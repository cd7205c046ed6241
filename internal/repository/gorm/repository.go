package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crystalfootball/internal/models"
	"crystalfootball/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Users -------------------------------------------------------------------

func (s *Store) UpsertUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.ID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "role"}),
	}).Create(item).Error
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Packages ----------------------------------------------------------------

func (s *Store) UpsertPackage(ctx context.Context, item *models.Package) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Code) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"tier_rank",
			"price_usd",
			"duration_days",
			"active",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetPackageByCode(ctx context.Context, code string) (*models.Package, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Package
	err := s.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListPackages(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Package{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var items []models.Package
	if err := query.Order("tier_rank asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Subscriptions -----------------------------------------------------------

func (s *Store) InsertSubscription(ctx context.Context, item *models.Subscription) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

// GetActiveSubscription returns the caller's live row: status active
// and end_at still in the future. With overlapping rows the one ending
// last wins.
func (s *Store) GetActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	var item models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status = ?", models.SubscriptionActive).
		Where("end_at > ?", now).
		Order("end_at desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ExpireDueSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ?", models.SubscriptionActive).
		Where("end_at <= ?", now).
		Update("status", models.SubscriptionExpired)
	return res.RowsAffected, res.Error
}

func (s *Store) CancelActiveSubscriptions(ctx context.Context, userID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Where("status = ?", models.SubscriptionActive).
		Update("status", models.SubscriptionCancelled)
	return res.RowsAffected, res.Error
}

// --- Payment receipts --------------------------------------------------------

func (s *Store) InsertReceipt(ctx context.Context, item *models.PaymentReceipt) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetReceiptByID(ctx context.Context, id uint64) (*models.PaymentReceipt, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.PaymentReceipt
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListReceipts(ctx context.Context, params repository.ListReceiptsParams) ([]models.PaymentReceipt, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.PaymentReceipt{})
	if params.UserID != nil && strings.TrimSpace(*params.UserID) != "" {
		query = query.Where("user_id = ?", strings.TrimSpace(*params.UserID))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.PaymentReceipt
	err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateReceiptReview(ctx context.Context, id uint64, status string, reviewerID string, note *string, reviewedAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	updates := map[string]any{
		"status":      status,
		"reviewer_id": reviewerID,
		"reviewed_at": reviewedAt,
	}
	if note != nil {
		updates["reviewer_note"] = *note
	}
	return s.db.WithContext(ctx).Model(&models.PaymentReceipt{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// --- Betslips ----------------------------------------------------------------

func (s *Store) InsertBetslip(ctx context.Context, item *models.Betslip) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) UpdateBetslip(ctx context.Context, item *models.Betslip) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Omit("Legs").Save(item).Error
}

func (s *Store) GetBetslipByID(ctx context.Context, id uint64) (*models.Betslip, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Betslip
	err := s.db.WithContext(ctx).
		Preload("Legs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListBetslips(ctx context.Context, params repository.ListBetslipsParams) ([]models.Betslip, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyBetslipFilters(s.db.WithContext(ctx).Model(&models.Betslip{}), params)
	if params.WithLegs {
		query = query.Preload("Legs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		})
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "posted_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Betslip
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountBetslips(ctx context.Context, params repository.ListBetslipsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	query := applyBetslipFilters(s.db.WithContext(ctx).Model(&models.Betslip{}), params)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyBetslipFilters(query *gorm.DB, params repository.ListBetslipsParams) *gorm.DB {
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Outcome != nil && strings.TrimSpace(*params.Outcome) != "" {
		query = query.Where("outcome = ?", strings.TrimSpace(*params.Outcome))
	}
	if params.League != nil && strings.TrimSpace(*params.League) != "" {
		query = query.Where("league = ?", strings.TrimSpace(*params.League))
	}
	if params.IsVIP != nil {
		query = query.Where("is_vip = ?", *params.IsVIP)
	}
	if params.PostedSince != nil && !params.PostedSince.IsZero() {
		query = query.Where("posted_at >= ?", *params.PostedSince)
	}
	if params.PostedUntil != nil && !params.PostedUntil.IsZero() {
		query = query.Where("posted_at < ?", *params.PostedUntil)
	}
	if params.EventSince != nil && !params.EventSince.IsZero() {
		query = query.Where("event_time >= ?", *params.EventSince)
	}
	return query
}

func (s *Store) UpdateBetslipSettlement(ctx context.Context, id uint64, status string, outcome string, settledAt *time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Betslip{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"outcome":    outcome,
			"settled_at": settledAt,
		}).Error
}

// UpdateBetslipShape rewrites the type/combined-odds pair after a leg
// change. combinedOdds nil clears the cache (single bets carry none).
func (s *Store) UpdateBetslipShape(ctx context.Context, id uint64, betType string, combinedOdds *decimal.Decimal) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Betslip{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"bet_type":      betType,
			"combined_odds": combinedOdds,
		}).Error
}

// --- Legs --------------------------------------------------------------------

func (s *Store) InsertLeg(ctx context.Context, item *models.BetslipLeg) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetLegByID(ctx context.Context, id uint64) (*models.BetslipLeg, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.BetslipLeg
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListLegsByBetslipID(ctx context.Context, betslipID uint64) ([]models.BetslipLeg, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.BetslipLeg
	err := s.db.WithContext(ctx).
		Where("betslip_id = ?", betslipID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateLegStatus(ctx context.Context, id uint64, status string, notes *string, settledAt *time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	updates := map[string]any{
		"status":     status,
		"settled_at": settledAt,
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	return s.db.WithContext(ctx).Model(&models.BetslipLeg{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (s *Store) DeleteLeg(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.BetslipLeg{}, id).Error
}

// --- Settlement audit --------------------------------------------------------

func (s *Store) InsertSettlementRecord(ctx context.Context, item *models.SettlementRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListSettlementRecords(ctx context.Context, betslipID uint64) ([]models.SettlementRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SettlementRecord
	err := s.db.WithContext(ctx).
		Where("betslip_id = ?", betslipID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers -----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
