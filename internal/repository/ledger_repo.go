package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/mockmatch/internal/db"
)

// LedgerRepository reads and writes the per-day bonus ledger rows.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(database *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: database}
}

// Get returns the row for (user, day) or nil when it does not exist yet.
func (r *LedgerRepository) Get(ctx context.Context, userID uint64, day string) (*db.DailyBonusLedger, error) {
	var row db.DailyBonusLedger
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LatestBefore returns the most recent row strictly before day, or nil.
// Days are YYYY-MM-DD so string order is date order.
func (r *LedgerRepository) LatestBefore(ctx context.Context, userID uint64, day string) (*db.DailyBonusLedger, error) {
	var row db.DailyBonusLedger
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day < ?", userID, day).
		Order("day DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateIfAbsent inserts row unless (user, day) already exists.
// Concurrent callers converge on whichever row landed first.
func (r *LedgerRepository) CreateIfAbsent(ctx context.Context, row *db.DailyBonusLedger) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoNothing: true,
		}).
		Create(row).Error
	if isDuplicate(err) {
		return nil
	}
	return err
}

// DecrementIfPositive moves one unit from the balance to bonus_used_today in
// a single conditional UPDATE. It reports false when the balance was already zero.
func (r *LedgerRepository) DecrementIfPositive(ctx context.Context, userID uint64, day string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.DailyBonusLedger{}).
		Where("user_id = ? AND day = ? AND bonus_balance > 0", userID, day).
		Updates(map[string]any{
			"bonus_balance":    gorm.Expr("bonus_balance - 1"),
			"bonus_used_today": gorm.Expr("bonus_used_today + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AddCapped raises the balance by amount without exceeding limit and
// records the grant. It reports false when no row exists for (user, day).
func (r *LedgerRepository) AddCapped(ctx context.Context, userID uint64, day string, amount, limit int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.DailyBonusLedger{}).
		Where("user_id = ? AND day = ?", userID, day).
		Updates(map[string]any{
			"bonus_balance": gorm.Expr(
				"CASE WHEN bonus_balance + ? > ? THEN ? ELSE bonus_balance + ? END",
				amount, limit, limit, amount,
			),
			"bonus_granted_today": gorm.Expr("bonus_granted_today + ?", amount),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
