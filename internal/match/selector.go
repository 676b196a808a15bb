package match

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/repository"
)

// Round tells whether the requester has been through the whole pool yet.
type Round int

const (
	RoundFirst Round = iota + 1
	RoundSecond
)

// Selection is the outcome of one candidate request.
type Selection struct {
	Candidates []Candidate
	Round      Round
	DailyLimit int
	ShownToday int
	// Exhausted is set when the day's limit was already reached; Candidates is then empty.
	Exhausted bool
}

// CandidateSelector builds, filters and ranks the candidate pool of a user.
type CandidateSelector struct {
	store        *repository.Store
	quota        *QuotaLedger
	achievements *Achievements
	rules        Rules
	log          *slog.Logger
}

func NewCandidateSelector(store *repository.Store, quota *QuotaLedger, achievements *Achievements, rules Rules, log *slog.Logger) *CandidateSelector {
	return &CandidateSelector{store: store, quota: quota, achievements: achievements, rules: rules, log: log}
}

// Candidates returns the ranked candidates for userID at now.
//
// Behavior:
//   - Inactive or incomplete requester profile → ErrProfileIncomplete; unknown user → ErrUserNotFound.
//   - Daily limit already reached → empty Selection with Exhausted set.
//   - Second round once the user has viewed at least (eligible - RoundRecycleSlack)
//     distinct users; the first round also excludes everyone viewed before.
//   - Self and accepted partners are always excluded.
//   - In the first round users with an unanswered like toward the requester
//     skip the view exclusions; in the second round anyone shown today is out.
//   - The ranked list is cut to the daily limit.
func (s *CandidateSelector) Candidates(ctx context.Context, userID uint64, now time.Time) (Selection, error) {
	me, err := s.store.Users.GetProfile(ctx, userID)
	if err != nil {
		return Selection{}, fmt.Errorf("get profile: %w", err)
	}
	if me == nil {
		return Selection{}, ErrUserNotFound
	}
	if !me.Active || !me.IsComplete() {
		return Selection{}, ErrProfileIncomplete
	}

	day := s.rules.day(now)
	limit := s.quota.DailyLimit(ctx, userID, day)
	shownToday, err := s.store.Views.ViewedOn(ctx, userID, day)
	if err != nil {
		return Selection{}, fmt.Errorf("views today: %w", err)
	}
	sel := Selection{DailyLimit: limit, ShownToday: len(shownToday)}
	if len(shownToday) >= limit {
		sel.Exhausted = true
		return sel, nil
	}

	eligible, err := s.store.Users.ListCompleteProfiles(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("list profiles: %w", err)
	}
	viewedEver, err := s.store.Views.ViewedEver(ctx, userID)
	if err != nil {
		return Selection{}, fmt.Errorf("views history: %w", err)
	}
	records, err := s.store.Relations.RecordsInvolving(ctx, userID)
	if err != nil {
		return Selection{}, fmt.Errorf("relations: %w", err)
	}
	states := FoldByPartner(userID, records)

	sel.Round = RoundFirst
	if len(viewedEver) >= len(eligible)-s.rules.RoundRecycleSlack {
		sel.Round = RoundSecond
	}

	viewed := toSet(shownToday)
	if sel.Round == RoundFirst {
		for _, id := range viewedEver {
			viewed[id] = struct{}{}
		}
	}

	invitations := make(map[uint64]bool)
	pool := make([]db.User, 0, len(eligible))
	for _, u := range eligible {
		if u.ID == userID {
			continue
		}
		st := states[u.ID]
		if st.Accepted() {
			continue
		}
		invited := st.InvitationFrom(u.ID)
		if _, seen := viewed[u.ID]; seen && !(invited && sel.Round == RoundFirst) {
			continue
		}
		if !u.IsComplete() || !u.HasPracticeTopic() || !u.HasContact() {
			continue
		}
		if invited {
			invitations[u.ID] = true
		}
		pool = append(pool, u)
	}

	ids := make([]uint64, len(pool))
	for i := range pool {
		ids[i] = pool[i].ID
	}
	experience, err := s.achievements.ExperienceFor(ctx, ids)
	if err != nil {
		return Selection{}, err
	}

	ranked := Rank(s.rules, RankInput{
		Requester:   *me,
		Candidates:  pool,
		Invitations: invitations,
		Experience:  experience,
		Now:         now,
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	sel.Candidates = ranked

	s.log.Debug("candidates selected",
		"user", userID,
		"round", int(sel.Round),
		"eligible", len(eligible),
		"pool", len(pool),
		"returned", len(ranked),
	)
	return sel, nil
}

func toSet(ids []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
