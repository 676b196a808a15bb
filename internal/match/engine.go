// Package match is the matching engine: candidate selection and ranking,
// the daily quota ledger, the append-only relation log and the achievement
// levels that feed ranking.
//
// Exposed operations live on Engine and always answer with a Result
// envelope. Components below it return plain errors.
package match

import (
	"context"
	"log/slog"
	"time"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/repository"
)

// Notifier is told about new matches. Delivery is best effort.
type Notifier interface {
	NotifyMatch(ctx context.Context, a, b uint64) error
}

// QuotaCache keeps per-day view counts out of the store on hot reads.
// Implementations swallow their own failures; a miss reports ok=false.
//
// A day's count only grows, so RaiseViewCount must never lower a cached
// value: a reader that counted before a concurrent view committed cannot
// overwrite the newer count.
type QuotaCache interface {
	ViewCount(ctx context.Context, userID uint64, day string) (n int64, ok bool)
	RaiseViewCount(ctx context.Context, userID uint64, day string, n int64)
	InvalidateViewCount(ctx context.Context, userID uint64, day string)
}

// Engine wires the components together and exposes the envelope API.
type Engine struct {
	store *repository.Store
	rules Rules
	log   *slog.Logger
	now   func() time.Time

	notifier Notifier
	cache    QuotaCache

	quota        *QuotaLedger
	views        *ViewRecorder
	achievements *Achievements
	relations    *Relations
	selector     *CandidateSelector
}

// Option customizes an Engine.
type Option func(*Engine)

// WithNotifier sets the match notifier.
func WithNotifier(n Notifier) Option { return func(e *Engine) { e.notifier = n } }

// WithQuotaCache sets the view count cache.
func WithQuotaCache(c QuotaCache) Option { return func(e *Engine) { e.cache = c } }

// WithClock overrides time.Now; tests pin the day with it.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// NewEngine builds an engine over store.
func NewEngine(store *repository.Store, rules Rules, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		rules: rules,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "match")

	e.quota = NewQuotaLedger(store, rules, e.log)
	e.views = NewViewRecorder(store, e.quota, e.cache, rules, e.log)
	e.achievements = NewAchievements(store, rules, e.log)
	e.relations = NewRelations(store, e.views, e.notifier, rules, e.log)
	e.selector = NewCandidateSelector(store, e.quota, e.achievements, rules, e.log)
	return e
}

// Rules returns the rule set the engine runs with.
func (e *Engine) Rules() Rules { return e.rules }

// Today returns the current day key.
func (e *Engine) Today() string { return e.rules.day(e.now()) }

// GetPotentialMatches returns today's ranked candidates for userID.
// An exhausted quota is a successful empty answer with an explanation.
func (e *Engine) GetPotentialMatches(ctx context.Context, userID uint64) Result[[]CandidateView] {
	sel, err := e.selector.Candidates(ctx, userID, e.now())
	if err != nil {
		return report(e.log, "GetPotentialMatches", fail[[]CandidateView](err))
	}
	if sel.Exhausted {
		exhausted := fail[[]CandidateView](ErrQuotaExhausted)
		return ok([]CandidateView{}, exhausted.Message)
	}

	out := make([]CandidateView, 0, len(sel.Candidates))
	for _, c := range sel.Candidates {
		out = append(out, newCandidateView(c))
	}
	msg := ""
	if len(out) == 0 {
		msg = "no new candidates right now"
	}
	return ok(out, msg)
}

// Like answers a like from userID to targetID.
func (e *Engine) Like(ctx context.Context, userID, targetID uint64) Result[LikeOutcome] {
	outcome, err := e.relations.Like(ctx, userID, targetID, e.Today())
	if err != nil {
		return report(e.log, "Like", fail[LikeOutcome](err))
	}
	return ok(outcome, likeMessages[outcome])
}

// Dislike answers a dislike from userID to targetID.
func (e *Engine) Dislike(ctx context.Context, userID, targetID uint64) Result[DislikeOutcome] {
	outcome, err := e.relations.Dislike(ctx, userID, targetID, e.Today())
	if err != nil {
		return report(e.log, "Dislike", fail[DislikeOutcome](err))
	}
	return ok(outcome, dislikeMessages[outcome])
}

// GetAcceptedMatches returns every partner of userID with contact details.
func (e *Engine) GetAcceptedMatches(ctx context.Context, userID uint64) Result[[]Partner] {
	ids, err := e.relations.AcceptedPartners(ctx, userID)
	if err != nil {
		return report(e.log, "GetAcceptedMatches", fail[[]Partner](err))
	}
	partners, err := e.partners(ctx, ids)
	if err != nil {
		return report(e.log, "GetAcceptedMatches", fail[[]Partner](err))
	}
	return ok(partners, "")
}

// ListAcceptedMatches pages through accepted matches, newest first.
// An empty pageToken starts from the newest match.
func (e *Engine) ListAcceptedMatches(ctx context.Context, userID uint64, pageToken string, limit int) Result[PartnerPage] {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var token *string
	if pageToken != "" {
		token = &pageToken
	}

	records, next, err := e.store.Relations.ListAccepted(ctx, userID, token, limit)
	if err != nil {
		return report(e.log, "ListAcceptedMatches", fail[PartnerPage](err))
	}

	ids := make([]uint64, 0, len(records))
	matchedAt := make(map[uint64]time.Time, len(records))
	for _, rec := range records {
		other := rec.FromUserID
		if other == userID {
			other = rec.ToUserID
		}
		ids = append(ids, other)
		matchedAt[other] = rec.CreatedAt
	}
	partners, err := e.partners(ctx, ids)
	if err != nil {
		return report(e.log, "ListAcceptedMatches", fail[PartnerPage](err))
	}
	for i := range partners {
		partners[i].MatchedAt = matchedAt[partners[i].UserID]
	}

	page := PartnerPage{Partners: partners}
	if next != nil {
		page.NextPageToken = *next
	}
	return ok(page, "")
}

// GetDailyQuotaStatus reports today's limit, usage and bonus balance.
func (e *Engine) GetDailyQuotaStatus(ctx context.Context, userID uint64) Result[QuotaStatus] {
	status, err := e.quotaStatus(ctx, userID, e.Today())
	if err != nil {
		return report(e.log, "GetDailyQuotaStatus", fail[QuotaStatus](err))
	}
	return ok(status, "")
}

// GetAchievement returns the user's experience and level.
func (e *Engine) GetAchievement(ctx context.Context, userID uint64) Result[AchievementView] {
	if err := e.requireUser(ctx, userID); err != nil {
		return report(e.log, "GetAchievement", fail[AchievementView](err))
	}
	ach, err := e.achievements.Level(ctx, userID)
	if err != nil {
		return report(e.log, "GetAchievement", fail[AchievementView](err))
	}
	return ok(newAchievementView(ach), "")
}

// RecordInterviewFeedback stores feedback userID left after interviewing
// partnerID and refreshes userID's achievement. Only matched partners may
// leave feedback for each other.
func (e *Engine) RecordInterviewFeedback(ctx context.Context, userID, partnerID uint64, passed bool, content string) Result[AchievementView] {
	if userID == partnerID {
		return report(e.log, "RecordInterviewFeedback", fail[AchievementView](ErrSelfAction))
	}
	st, err := e.relations.State(ctx, userID, partnerID)
	if err != nil {
		return report(e.log, "RecordInterviewFeedback", fail[AchievementView](err))
	}
	if !st.Accepted() {
		return report(e.log, "RecordInterviewFeedback", fail[AchievementView](ErrNotPartners))
	}

	status := "no"
	if passed {
		status = db.InterviewPassed
	}
	if err := e.store.Feedback.Create(ctx, &db.Feedback{
		UserID:          userID,
		PartnerID:       partnerID,
		InterviewStatus: status,
		Content:         content,
	}); err != nil {
		return report(e.log, "RecordInterviewFeedback", fail[AchievementView](err))
	}

	ach, err := e.achievements.Refresh(ctx, userID)
	if err != nil {
		return report(e.log, "RecordInterviewFeedback", fail[AchievementView](err))
	}
	return ok(newAchievementView(ach), "feedback recorded")
}

// GrantBonus adds bonus views for reward flows and returns the new status.
func (e *Engine) GrantBonus(ctx context.Context, userID uint64, amount int) Result[QuotaStatus] {
	if err := e.requireUser(ctx, userID); err != nil {
		return report(e.log, "GrantBonus", fail[QuotaStatus](err))
	}
	day := e.Today()
	if _, err := e.quota.GrantBonus(ctx, userID, day, amount); err != nil {
		return report(e.log, "GrantBonus", fail[QuotaStatus](err))
	}
	status, err := e.quotaStatus(ctx, userID, day)
	if err != nil {
		return report(e.log, "GrantBonus", fail[QuotaStatus](err))
	}
	return ok(status, "bonus granted")
}

func (e *Engine) quotaStatus(ctx context.Context, userID uint64, day string) (QuotaStatus, error) {
	if err := e.requireUser(ctx, userID); err != nil {
		return QuotaStatus{}, err
	}
	row, err := e.quota.EnsureToday(ctx, userID, day)
	if err != nil {
		return QuotaStatus{}, err
	}
	used, err := e.views.UsedToday(ctx, userID, day)
	if err != nil {
		return QuotaStatus{}, err
	}

	limit := limitOf(e.rules, row)
	return QuotaStatus{
		Day:               day,
		BaseQuota:         e.rules.BaseQuota,
		BonusBalance:      row.BonusBalance,
		BonusGrantedToday: row.BonusGrantedToday,
		BonusUsedToday:    row.BonusUsedToday,
		DailyLimit:        limit,
		UsedToday:         int(used),
		Remaining:         max(limit-int(used), 0),
	}, nil
}

func (e *Engine) requireUser(ctx context.Context, userID uint64) error {
	u, err := e.store.Users.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}

// partners loads profiles for ids, keeping their order and skipping users
// that no longer exist.
func (e *Engine) partners(ctx context.Context, ids []uint64) ([]Partner, error) {
	out := make([]Partner, 0, len(ids))
	for _, id := range ids {
		u, err := e.store.Users.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			continue
		}
		out = append(out, newPartner(u))
	}
	return out, nil
}

// report logs a failed envelope. Expected outcomes go to debug; store
// and contention failures are errors.
func report[T any](log *slog.Logger, op string, r Result[T]) Result[T] {
	if r.Code == CodeUnavailable {
		log.Error(op+" failed", "code", string(r.Code), "err", r.Err)
	} else {
		log.Debug(op+" rejected", "code", string(r.Code), "err", r.Err)
	}
	return r
}
