package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/repository"
)

// Achievements derives experience and level from successful-interview feedback.
type Achievements struct {
	store *repository.Store
	rules Rules
	log   *slog.Logger
}

func NewAchievements(store *repository.Store, rules Rules, log *slog.Logger) *Achievements {
	return &Achievements{store: store, rules: rules, log: log}
}

// Level recomputes the user's experience and level from feedback and
// refreshes the cached row. Repeated calls with unchanged feedback write
// the same values.
func (a *Achievements) Level(ctx context.Context, userID uint64) (db.Achievement, error) {
	count, err := a.store.Feedback.CountSuccessfulInterviews(ctx, userID)
	if err != nil {
		return db.Achievement{}, fmt.Errorf("count feedback: %w", err)
	}

	ach := db.Achievement{
		UserID:           userID,
		ExperiencePoints: int(count),
		CurrentLevel:     LevelFor(int(count), a.rules.LevelThresholds),
	}
	if err := a.store.Achievements.Upsert(ctx, &ach); err != nil {
		return db.Achievement{}, fmt.Errorf("save achievement: %w", err)
	}
	return ach, nil
}

// Refresh is called after a feedback is saved.
func (a *Achievements) Refresh(ctx context.Context, userID uint64) (db.Achievement, error) {
	ach, err := a.Level(ctx, userID)
	if err != nil {
		return db.Achievement{}, err
	}
	a.log.Debug("achievement refreshed", "user", userID, "experience", ach.ExperiencePoints, "level", ach.CurrentLevel)
	return ach, nil
}

// ExperienceFor returns experience points for each user in ids; users
// without successful interviews are absent.
func (a *Achievements) ExperienceFor(ctx context.Context, ids []uint64) (map[uint64]int, error) {
	counts, err := a.store.Feedback.CountSuccessfulByUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	out := make(map[uint64]int, len(counts))
	for id, n := range counts {
		out[id] = int(n)
	}
	return out, nil
}
