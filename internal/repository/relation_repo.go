package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/utils/pagination"
)

// RelationRepository provides data access for the append-only relation log.
// It never updates or deletes rows.
type RelationRepository struct {
	db *gorm.DB
}

// NewRelationRepository creates a new repository bound to the given DB connection.
func NewRelationRepository(database *gorm.DB) *RelationRepository {
	return &RelationRepository{db: database}
}

// PairKey orders two user ids into the unordered pair key.
func PairKey(a, b uint64) (low, high uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// PairLog returns every record between a and b, oldest first.
func (r *RelationRepository) PairLog(ctx context.Context, a, b uint64) ([]db.RelationRecord, error) {
	low, high := PairKey(a, b)
	var records []db.RelationRecord
	err := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		Order("seq ASC").
		Find(&records).Error
	return records, err
}

// Append inserts rec as the next entry of its pair's log.
//
// Behavior:
//   - PairLow/PairHigh are derived from From/To.
//   - rec.Seq must be the next position (len(log)+1) of the snapshot the
//     caller decided on.
//   - If another writer already took that position → ErrConflict, nothing written.
//
// Example:
//
//	repo.Append(ctx, &db.RelationRecord{FromUserID: 1, ToUserID: 2, Action: db.ActionLike, Status: db.StatusPending, Seq: 1})
func (r *RelationRepository) Append(ctx context.Context, rec *db.RelationRecord) error {
	rec.PairLow, rec.PairHigh = PairKey(rec.FromUserID, rec.ToUserID)
	err := r.db.WithContext(ctx).Create(rec).Error
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// RecordsInvolving returns every record where user is on either side,
// ordered by pair and position so callers can fold each pair in order.
func (r *RelationRepository) RecordsInvolving(ctx context.Context, userID uint64) ([]db.RelationRecord, error) {
	var records []db.RelationRecord
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("pair_low ASC, pair_high ASC, seq ASC").
		Find(&records).Error
	return records, err
}

// AcceptedPartners returns the distinct users that share an accepted record with userID.
func (r *RelationRepository) AcceptedPartners(ctx context.Context, userID uint64) ([]uint64, error) {
	var records []db.RelationRecord
	err := r.db.WithContext(ctx).
		Select("from_user_id", "to_user_id").
		Where("status = ? AND (from_user_id = ? OR to_user_id = ?)", db.StatusAccepted, userID, userID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(records))
	partners := make([]uint64, 0, len(records))
	for _, rec := range records {
		other := rec.FromUserID
		if other == userID {
			other = rec.ToUserID
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		partners = append(partners, other)
	}
	return partners, nil
}

// ListAccepted returns accepted records involving userID, newest first.
//
// Behavior:
//   - Ordered by id DESC (append order, newest match first).
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListAccepted(ctx, 42, nil, 20) // first 20 matches of user 42
func (r *RelationRepository) ListAccepted(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.RelationRecord, *string, error) {
	var records []db.RelationRecord

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("relation_records r").
		Where("r.status = ? AND (r.from_user_id = ? OR r.to_user_id = ?)", db.StatusAccepted, userID, userID).
		Order("r.id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		query = query.Where("r.id < ?", cursor.RecordID)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(records) > limit {
		last := records[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{RecordID: last.ID})
		nextToken = &token
		records = records[:limit]
	}

	return records, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
