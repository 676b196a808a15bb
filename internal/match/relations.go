package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/repository"
)

// LikeOutcome describes what a like did to the pair.
type LikeOutcome string

const (
	LikePending        LikeOutcome = "pending"
	LikeMatched        LikeOutcome = "matched"
	LikeAlreadyLiked   LikeOutcome = "already_liked"
	LikeAlreadyMatched LikeOutcome = "already_matched"
)

// DislikeOutcome describes what a dislike did to the pair.
type DislikeOutcome string

const (
	DislikeRecorded DislikeOutcome = "disliked"
	DislikeCanceled DislikeOutcome = "canceled"
	DislikeAlready  DislikeOutcome = "already_disliked"
)

// Relations is the like/dislike/cancel state machine over the append-only log.
type Relations struct {
	store    *repository.Store
	views    *ViewRecorder
	notifier Notifier
	rules    Rules
	log      *slog.Logger
}

// NewRelations creates the state machine. notifier may be nil.
func NewRelations(store *repository.Store, views *ViewRecorder, notifier Notifier, rules Rules, log *slog.Logger) *Relations {
	return &Relations{store: store, views: views, notifier: notifier, rules: rules, log: log}
}

// Like records that from likes to.
//
// Behavior:
//   - The view is charged first; quota exhaustion aborts before any record is written.
//   - Pair already accepted → LikeAlreadyMatched, nothing written.
//   - to has a pending like toward from → append {from→to, like, accepted}, notify, LikeMatched.
//   - from's latest record is already a like → LikeAlreadyLiked, nothing written.
//   - Otherwise append {from→to, like, pending} → LikePending.
//
// Example:
//
//	outcome, err := relations.Like(ctx, 1, 2, "2024-01-01")
func (r *Relations) Like(ctx context.Context, fromID, toID uint64, day string) (LikeOutcome, error) {
	if err := r.prepare(ctx, fromID, toID, day); err != nil {
		return "", err
	}

	var outcome LikeOutcome
	err := r.appendWithRetry(ctx, fromID, toID, func(st PairState) *db.RelationRecord {
		switch {
		case st.Accepted():
			outcome = LikeAlreadyMatched
			return nil
		case st.PendingLikeFrom(toID):
			outcome = LikeMatched
			return &db.RelationRecord{Action: db.ActionLike, Status: db.StatusAccepted}
		case latestAction(st, fromID) == db.ActionLike:
			outcome = LikeAlreadyLiked
			return nil
		default:
			outcome = LikePending
			return &db.RelationRecord{Action: db.ActionLike, Status: db.StatusPending}
		}
	})
	if err != nil {
		return "", err
	}

	if outcome == LikeMatched {
		r.log.Info("match accepted", "from", fromID, "to", toID)
		r.notify(ctx, fromID, toID)
	}
	return outcome, nil
}

// Dislike records that from dislikes to, or withdraws from's outstanding like.
//
// Behavior:
//   - The view is charged first, as for Like.
//   - Pair already accepted → ErrMatchLocked, nothing written.
//   - from's latest record is a like → append {from→to, cancel, rejected}.
//   - from's latest record is already a dislike → DislikeAlready, nothing written.
//   - Otherwise append {from→to, dislike, rejected}.
func (r *Relations) Dislike(ctx context.Context, fromID, toID uint64, day string) (DislikeOutcome, error) {
	if err := r.prepare(ctx, fromID, toID, day); err != nil {
		return "", err
	}

	var outcome DislikeOutcome
	locked := false
	err := r.appendWithRetry(ctx, fromID, toID, func(st PairState) *db.RelationRecord {
		switch {
		case st.Accepted():
			locked = true
			return nil
		case latestAction(st, fromID) == db.ActionLike:
			outcome = DislikeCanceled
			return &db.RelationRecord{Action: db.ActionCancel, Status: db.StatusRejected}
		case latestAction(st, fromID) == db.ActionDislike:
			outcome = DislikeAlready
			return nil
		default:
			outcome = DislikeRecorded
			return &db.RelationRecord{Action: db.ActionDislike, Status: db.StatusRejected}
		}
	})
	if err != nil {
		return "", err
	}
	if locked {
		return "", ErrMatchLocked
	}
	return outcome, nil
}

// AcceptedPartners returns everyone user is matched with, deduplicated.
func (r *Relations) AcceptedPartners(ctx context.Context, userID uint64) ([]uint64, error) {
	partners, err := r.store.Relations.AcceptedPartners(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("accepted partners: %w", err)
	}
	return partners, nil
}

// State folds the current log of the pair.
func (r *Relations) State(ctx context.Context, a, b uint64) (PairState, error) {
	records, err := r.store.Relations.PairLog(ctx, a, b)
	if err != nil {
		return PairState{}, fmt.Errorf("read pair log: %w", err)
	}
	return DeriveState(a, b, records), nil
}

// prepare validates the pair and charges the view. An inactive target
// counts as unknown.
func (r *Relations) prepare(ctx context.Context, fromID, toID uint64, day string) error {
	if fromID == toID {
		return ErrSelfAction
	}
	target, err := r.store.Users.GetProfile(ctx, toID)
	if err != nil {
		return fmt.Errorf("get target: %w", err)
	}
	if target == nil || !target.Active {
		return ErrUserNotFound
	}
	return r.views.RecordView(ctx, fromID, toID, day)
}

// appendWithRetry reads the pair log, lets decide pick the next record and
// appends it at the next position. Losing the position to a concurrent
// writer re-reads the log and decides again. decide returning nil means
// nothing is written.
func (r *Relations) appendWithRetry(ctx context.Context, fromID, toID uint64, decide func(PairState) *db.RelationRecord) error {
	for attempt := 0; attempt <= r.rules.AppendRetries; attempt++ {
		st, err := r.State(ctx, fromID, toID)
		if err != nil {
			return err
		}

		rec := decide(st)
		if rec == nil {
			return nil
		}
		rec.FromUserID, rec.ToUserID = fromID, toID
		rec.Seq = st.LastSeq + 1

		err = r.store.Relations.Append(ctx, rec)
		if errors.Is(err, repository.ErrConflict) {
			r.log.Debug("relation append lost race, retrying", "from", fromID, "to", toID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return fmt.Errorf("append relation: %w", err)
		}
		return nil
	}
	return ErrContention
}

func (r *Relations) notify(ctx context.Context, a, b uint64) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.NotifyMatch(ctx, a, b); err != nil {
		r.log.Warn("match notification failed", "a", a, "b", b, "err", err)
	}
}

func latestAction(st PairState, from uint64) db.Action {
	if rec := st.Latest(from); rec != nil {
		return rec.Action
	}
	return ""
}
