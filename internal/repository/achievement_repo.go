package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/mockmatch/internal/db"
)

// AchievementRepository caches derived experience/level values.
type AchievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(database *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: database}
}

// Upsert overwrites the cached achievement for a.UserID.
func (r *AchievementRepository) Upsert(ctx context.Context, a *db.Achievement) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"experience_points", "current_level", "updated_at"}),
		}).
		Create(a).Error
}

// Get returns the cached achievement or nil when none was computed yet.
func (r *AchievementRepository) Get(ctx context.Context, userID uint64) (*db.Achievement, error) {
	var a db.Achievement
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
