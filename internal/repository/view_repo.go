package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/mockmatch/internal/db"
)

// ViewRepository stores which candidates a viewer has been shown per day.
type ViewRepository struct {
	db *gorm.DB
}

func NewViewRepository(database *gorm.DB) *ViewRepository {
	return &ViewRepository{db: database}
}

// Exists reports whether viewer already saw target on day.
func (r *ViewRepository) Exists(ctx context.Context, viewerID, targetID uint64, day string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.DailyView{}).
		Where("viewer_id = ? AND viewed_id = ? AND day = ?", viewerID, targetID, day).
		Count(&count).Error
	return count > 0, err
}

// CountForDay returns how many distinct candidates viewer was shown on day.
func (r *ViewRepository) CountForDay(ctx context.Context, viewerID uint64, day string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.DailyView{}).
		Where("viewer_id = ? AND day = ?", viewerID, day).
		Count(&count).Error
	return count, err
}

// Insert records a view. A row that already exists is left alone and
// reported as inserted=false, which callers treat as success.
func (r *ViewRepository) Insert(ctx context.Context, viewerID, targetID uint64, day string) (bool, error) {
	view := db.DailyView{ViewerID: viewerID, ViewedID: targetID, Day: day}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "viewed_id"}, {Name: "day"}},
			DoNothing: true,
		}).
		Create(&view)
	if isDuplicate(res.Error) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ViewedOn returns the users viewer was shown on day.
func (r *ViewRepository) ViewedOn(ctx context.Context, viewerID uint64, day string) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.DailyView{}).
		Where("viewer_id = ? AND day = ?", viewerID, day).
		Pluck("viewed_id", &ids).Error
	return ids, err
}

// ViewedEver returns every distinct user viewer has been shown on any day.
func (r *ViewRepository) ViewedEver(ctx context.Context, viewerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.DailyView{}).
		Distinct("viewed_id").
		Where("viewer_id = ?", viewerID).
		Pluck("viewed_id", &ids).Error
	return ids, err
}
