package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oggyb/mockmatch/internal/repository"
)

// ViewRecorder records which candidates a viewer acted on each day and
// enforces the daily limit.
type ViewRecorder struct {
	store *repository.Store
	quota *QuotaLedger
	cache QuotaCache
	rules Rules
	log   *slog.Logger
}

// NewViewRecorder creates a recorder. cache may be nil.
func NewViewRecorder(store *repository.Store, quota *QuotaLedger, cache QuotaCache, rules Rules, log *slog.Logger) *ViewRecorder {
	return &ViewRecorder{store: store, quota: quota, cache: cache, rules: rules, log: log}
}

// RecordView charges one view of target to viewer on day.
//
// Behavior:
//   - An existing (viewer, target, day) view is success and charges nothing.
//   - If today's count already reached the daily limit → ErrQuotaExhausted.
//   - Past BaseQuota each new view spends one bonus unit; no balance → ErrQuotaExhausted.
//   - The insert runs before the bonus spend in one transaction, so a
//     concurrent duplicate finds the row taken and never spends bonus.
//
// Example:
//
//	err := views.RecordView(ctx, 1, 2, "2024-01-01")
func (v *ViewRecorder) RecordView(ctx context.Context, viewerID, targetID uint64, day string) error {
	inserted := false
	err := v.store.Transaction(ctx, func(tx *repository.Store) error {
		seen, err := tx.Views.Exists(ctx, viewerID, targetID, day)
		if err != nil {
			return fmt.Errorf("check view: %w", err)
		}
		if seen {
			return nil
		}

		count, err := tx.Views.CountForDay(ctx, viewerID, day)
		if err != nil {
			return fmt.Errorf("count views: %w", err)
		}
		limit := v.quota.with(tx).DailyLimit(ctx, viewerID, day)
		if count >= int64(limit) {
			return ErrQuotaExhausted
		}

		ok, err := tx.Views.Insert(ctx, viewerID, targetID, day)
		if err != nil {
			return fmt.Errorf("insert view: %w", err)
		}
		if !ok {
			// lost the race to an identical view
			return nil
		}
		inserted = true

		if count >= int64(v.rules.BaseQuota) {
			return v.quota.with(tx).Consume(ctx, viewerID, day)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrQuotaExhausted) {
			v.log.Debug("view blocked by quota", "viewer", viewerID, "target", targetID, "day", day)
		}
		return err
	}

	if inserted && v.cache != nil {
		v.refreshCount(ctx, viewerID, day)
	}
	return nil
}

// refreshCount recounts after a committed view and raises the cached count.
// If the recount fails the cached value is dropped instead.
func (v *ViewRecorder) refreshCount(ctx context.Context, viewerID uint64, day string) {
	count, err := v.store.Views.CountForDay(ctx, viewerID, day)
	if err != nil {
		v.log.Warn("recount views failed, dropping cached count", "viewer", viewerID, "day", day, "err", err)
		v.cache.InvalidateViewCount(ctx, viewerID, day)
		return
	}
	v.cache.RaiseViewCount(ctx, viewerID, day, count)
}

// UsedToday returns the viewer's view count for day, cache first.
func (v *ViewRecorder) UsedToday(ctx context.Context, viewerID uint64, day string) (int64, error) {
	if v.cache != nil {
		if n, ok := v.cache.ViewCount(ctx, viewerID, day); ok {
			return n, nil
		}
	}
	count, err := v.store.Views.CountForDay(ctx, viewerID, day)
	if err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	if v.cache != nil {
		v.cache.RaiseViewCount(ctx, viewerID, day, count)
	}
	return count, nil
}
