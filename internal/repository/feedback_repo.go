package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/mockmatch/internal/db"
)

// FeedbackRepository exposes the interview feedback counts the engine needs.
type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(database *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: database}
}

// Create stores one feedback row.
func (r *FeedbackRepository) Create(ctx context.Context, fb *db.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

// CountSuccessfulInterviews counts the user's feedback rows with interview_status = yes.
func (r *FeedbackRepository) CountSuccessfulInterviews(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Feedback{}).
		Where("user_id = ? AND interview_status = ?", userID, db.InterviewPassed).
		Count(&count).Error
	return count, err
}

// CountSuccessfulByUsers is the batched form of CountSuccessfulInterviews.
// Users without feedback are absent from the map.
func (r *FeedbackRepository) CountSuccessfulByUsers(ctx context.Context, userIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		UserID uint64
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&db.Feedback{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ? AND interview_status = ?", userIDs, db.InterviewPassed).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}
