package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/repository"
)

// QuotaLedger tracks the daily base allowance plus the capped bonus balance.
type QuotaLedger struct {
	store *repository.Store
	rules Rules
	log   *slog.Logger
}

// NewQuotaLedger creates a ledger over store.
func NewQuotaLedger(store *repository.Store, rules Rules, log *slog.Logger) *QuotaLedger {
	return &QuotaLedger{store: store, rules: rules, log: log}
}

// with returns a copy bound to a transaction store.
func (q *QuotaLedger) with(tx *repository.Store) *QuotaLedger {
	c := *q
	c.store = tx
	return &c
}

// EnsureToday returns the (user, day) ledger row, creating it on first use.
//
// Behavior:
//   - A new row inherits the balance of the user's latest earlier row, 0 if none.
//   - bonus_granted_today starts at 0.
//   - Concurrent callers converge on the same row; the loser's insert is a no-op.
func (q *QuotaLedger) EnsureToday(ctx context.Context, userID uint64, day string) (*db.DailyBonusLedger, error) {
	row, err := q.store.Ledgers.Get(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	if row != nil {
		return row, nil
	}

	prev, err := q.store.Ledgers.LatestBefore(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("get previous ledger: %w", err)
	}
	balance := 0
	if prev != nil {
		balance = min(prev.BonusBalance, q.rules.BonusCap)
	}

	if err := q.store.Ledgers.CreateIfAbsent(ctx, &db.DailyBonusLedger{
		UserID:       userID,
		Day:          day,
		BonusBalance: balance,
	}); err != nil {
		return nil, fmt.Errorf("create ledger: %w", err)
	}

	row, err = q.store.Ledgers.Get(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("reload ledger: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("ledger for user %d on %s vanished after create", userID, day)
	}
	return row, nil
}

// DailyLimit is BaseQuota plus today's bonus, both the remaining balance and
// the units already spent today. A store failure is logged and the base
// quota returned.
func (q *QuotaLedger) DailyLimit(ctx context.Context, userID uint64, day string) int {
	row, err := q.EnsureToday(ctx, userID, day)
	if err != nil {
		q.log.Warn("daily limit falling back to base quota", "user", userID, "day", day, "err", err)
		return q.rules.BaseQuota
	}
	return limitOf(q.rules, row)
}

func limitOf(rules Rules, row *db.DailyBonusLedger) int {
	return rules.BaseQuota + row.BonusBalance + row.BonusUsedToday
}

// Consume spends one unit of bonus balance. It returns ErrQuotaExhausted
// when the balance is already zero.
func (q *QuotaLedger) Consume(ctx context.Context, userID uint64, day string) error {
	if _, err := q.EnsureToday(ctx, userID, day); err != nil {
		return err
	}
	ok, err := q.store.Ledgers.DecrementIfPositive(ctx, userID, day)
	if err != nil {
		return fmt.Errorf("consume bonus: %w", err)
	}
	if !ok {
		return ErrQuotaExhausted
	}
	return nil
}

// GrantBonus adds amount to the user's balance, capped at BonusCap, and
// returns the updated row.
func (q *QuotaLedger) GrantBonus(ctx context.Context, userID uint64, day string, amount int) (*db.DailyBonusLedger, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := q.EnsureToday(ctx, userID, day); err != nil {
		return nil, err
	}
	if _, err := q.store.Ledgers.AddCapped(ctx, userID, day, amount, q.rules.BonusCap); err != nil {
		return nil, fmt.Errorf("grant bonus: %w", err)
	}

	row, err := q.store.Ledgers.Get(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("reload ledger: %w", err)
	}
	q.log.Info("bonus granted", "user", userID, "day", day, "amount", amount, "balance", row.BonusBalance)
	return row, nil
}
