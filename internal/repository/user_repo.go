package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/mockmatch/internal/db"
)

// UserRepository is the read side of the profile store and user directory.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetProfile returns the user or nil when no such user exists.
func (r *UserRepository) GetProfile(ctx context.Context, userID uint64) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).Take(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListCompleteProfiles returns every active user whose profile passes the
// completeness predicate, ordered by id.
func (r *UserRepository) ListCompleteProfiles(ctx context.Context) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("job_type <> '' AND experience_level <> ''").
		Where("(practice_technical = ? OR practice_behavioral = ? OR practice_case = ? OR practice_system_design = ?)", true, true, true, true).
		Where("(COALESCE(contact_wechat, '') <> '' OR COALESCE(contact_linkedin, '') <> '' OR COALESCE(contact_phone, '') <> '')").
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	complete := users[:0]
	for _, u := range users {
		if u.IsComplete() {
			complete = append(complete, u)
		}
	}
	return complete, nil
}
