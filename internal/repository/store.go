package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrConflict is returned when a write loses a uniqueness race.
var ErrConflict = errors.New("repository: conflicting write")

// Store bundles the repositories that share one connection or transaction.
type Store struct {
	db *gorm.DB

	Users        *UserRepository
	Relations    *RelationRepository
	Views        *ViewRepository
	Ledgers      *LedgerRepository
	Feedback     *FeedbackRepository
	Achievements *AchievementRepository
}

// NewStore binds every repository to the given DB handle.
func NewStore(database *gorm.DB) *Store {
	return &Store{
		db:           database,
		Users:        NewUserRepository(database),
		Relations:    NewRelationRepository(database),
		Views:        NewViewRepository(database),
		Ledgers:      NewLedgerRepository(database),
		Feedback:     NewFeedbackRepository(database),
		Achievements: NewAchievementRepository(database),
	}
}

// Transaction runs fn with a Store bound to a single transaction.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// isDuplicate detects unique-constraint violations. gorm translates them when
// TranslateError is on; the string checks cover connections opened without it.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
