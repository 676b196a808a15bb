package match_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/logger"
	"github.com/oggyb/mockmatch/internal/match"
	"github.com/oggyb/mockmatch/internal/repository"
	"github.com/oggyb/mockmatch/internal/testutil"
)

const testDay = "2024-01-01"

var testNow = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

// recordingNotifier remembers every match it was told about.
type recordingNotifier struct {
	mu    sync.Mutex
	pairs [][2]uint64
	err   error
}

func (n *recordingNotifier) NotifyMatch(_ context.Context, a, b uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pairs = append(n.pairs, [2]uint64{a, b})
	return n.err
}

func (n *recordingNotifier) calls() [][2]uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][2]uint64(nil), n.pairs...)
}

// fixture is one isolated store with the engine components built on it.
type fixture struct {
	gdb      *gorm.DB
	store    *repository.Store
	rules    match.Rules
	notifier *recordingNotifier

	quota        *match.QuotaLedger
	views        *match.ViewRecorder
	achievements *match.Achievements
	relations    *match.Relations
	selector     *match.CandidateSelector
}

func newFixture(t *testing.T, users ...db.User) *fixture {
	t.Helper()
	return newFixtureWithRules(t, match.DefaultRules(), users...)
}

func newFixtureWithRules(t *testing.T, rules match.Rules, users ...db.User) *fixture {
	t.Helper()

	gdb := testutil.OpenDB(t)
	if len(users) > 0 {
		testutil.CreateUsers(t, gdb, users...)
	}
	store := repository.NewStore(gdb)
	log := logger.Discard()

	f := &fixture{gdb: gdb, store: store, rules: rules, notifier: &recordingNotifier{}}
	f.quota = match.NewQuotaLedger(store, rules, log)
	f.views = match.NewViewRecorder(store, f.quota, nil, rules, log)
	f.achievements = match.NewAchievements(store, rules, log)
	f.relations = match.NewRelations(store, f.views, f.notifier, rules, log)
	f.selector = match.NewCandidateSelector(store, f.quota, f.achievements, rules, log)
	return f
}

// users returns complete profiles with ids 1..n.
func users(n int, opts ...func(*db.User)) []db.User {
	out := make([]db.User, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, testutil.Profile(uint64(i), opts...))
	}
	return out
}

// seedViews records target views for viewer on day straight into the store.
func (f *fixture) seedViews(t *testing.T, viewer uint64, day string, targets ...uint64) {
	t.Helper()
	for _, target := range targets {
		require.NoError(t, f.gdb.Create(&db.DailyView{ViewerID: viewer, ViewedID: target, Day: day}).Error)
	}
}

func (f *fixture) pairLog(t *testing.T, a, b uint64) []db.RelationRecord {
	t.Helper()
	records, err := f.store.Relations.PairLog(context.Background(), a, b)
	require.NoError(t, err)
	return records
}

var errNotifierDown = errors.New("notifier down")
