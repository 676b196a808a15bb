package match_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/match"
	"github.com/oggyb/mockmatch/internal/testutil"
)

var rankNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// aged sets the account and profile ages relative to rankNow.
func aged(created, updated time.Duration) func(*db.User) {
	return func(u *db.User) {
		u.CreatedAt = rankNow.Add(-created)
		u.UpdatedAt = rankNow.Add(-updated)
	}
}

func behavioralOnly(u *db.User) {
	u.PracticeTechnical = false
	u.PracticeBehavioral = true
}

func TestClassify(t *testing.T) {
	me := testutil.Profile(1)

	overlap := testutil.Profile(2)
	sameLevel := testutil.Profile(3, behavioralOnly, func(u *db.User) { u.JobType = "frontend" })
	sameJob := testutil.Profile(4, behavioralOnly, func(u *db.User) { u.ExperienceLevel = "senior" })
	other := testutil.Profile(5, behavioralOnly, func(u *db.User) {
		u.JobType = "frontend"
		u.ExperienceLevel = "senior"
	})

	assert.Equal(t, match.BucketInvited, match.Classify(&me, &overlap, true))
	assert.Equal(t, match.BucketOverlap, match.Classify(&me, &overlap, false))
	assert.Equal(t, match.BucketExperienceMatch, match.Classify(&me, &sameLevel, false))
	assert.Equal(t, match.BucketJobMatch, match.Classify(&me, &sameJob, false))
	assert.Equal(t, match.BucketOther, match.Classify(&me, &other, false))

	// an invitation without topic overlap does not reach the first bucket
	assert.Equal(t, match.BucketExperienceMatch, match.Classify(&me, &sameLevel, true))
}

func TestScore(t *testing.T) {
	rules := match.DefaultRules()

	tests := []struct {
		name       string
		created    time.Duration
		updated    time.Duration
		experience int
		want       int
	}{
		{"fresh new user", 2 * 24 * time.Hour, time.Hour, 0, 70 + 30},
		{"active within month", 60 * 24 * time.Hour, 20 * 24 * time.Hour, 0, 50},
		{"stale", 90 * 24 * time.Hour, 60 * 24 * time.Hour, 0, 0},
		{"experience dominates", 90 * 24 * time.Hour, 60 * 24 * time.Hour, 3, 300},
		{"everything", 24 * time.Hour, time.Hour, 2, 200 + 70 + 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := testutil.Profile(2, aged(tt.created, tt.updated))
			assert.Equal(t, tt.want, match.Score(rules, &u, tt.experience, rankNow))
		})
	}
}

func TestRank_BucketBeatsScore(t *testing.T) {
	rules := match.DefaultRules()
	me := testutil.Profile(1)

	// overlap only, but a strong score
	strong := testutil.Profile(2, aged(time.Hour, time.Hour))
	// invited with overlap, stale and inexperienced
	weak := testutil.Profile(3, aged(365*24*time.Hour, 365*24*time.Hour))

	ranked := match.Rank(rules, match.RankInput{
		Requester:   me,
		Candidates:  []db.User{strong, weak},
		Invitations: map[uint64]bool{3: true},
		Experience:  map[uint64]int{2: 10},
		Now:         rankNow,
	})
	require.Len(t, ranked, 2)
	assert.Equal(t, uint64(3), ranked[0].User.ID)
	assert.Equal(t, match.BucketInvited, ranked[0].Bucket)
	assert.True(t, ranked[0].Invited)
	assert.Equal(t, uint64(2), ranked[1].User.ID)
	assert.Equal(t, 4, ranked[1].Level)
}

func TestRank_ScoreThenID(t *testing.T) {
	rules := match.DefaultRules()
	me := testutil.Profile(1)

	stale := 365 * 24 * time.Hour
	candidates := []db.User{
		testutil.Profile(5, aged(stale, stale)),
		testutil.Profile(4, aged(stale, time.Hour)),
		testutil.Profile(3, aged(stale, stale)),
		testutil.Profile(2, aged(stale, stale), behavioralOnly),
	}
	in := match.RankInput{Requester: me, Candidates: candidates, Experience: map[uint64]int{5: 1}, Now: rankNow}

	ranked := match.Rank(rules, in)
	ids := make([]uint64, len(ranked))
	for i, c := range ranked {
		ids[i] = c.User.ID
	}
	// overlap bucket by score desc (5: 100, 4: 70, 3: 0), then experience match (2)
	assert.Equal(t, []uint64{5, 4, 3, 2}, ids)

	// identical input, identical order
	for n := 0; n < 5; n++ {
		again := match.Rank(rules, in)
		for i := range again {
			assert.Equal(t, ids[i], again[i].User.ID)
		}
	}
}

func TestRank_TieBreaksByID(t *testing.T) {
	me := testutil.Profile(1)
	stale := 365 * 24 * time.Hour
	ranked := match.Rank(match.DefaultRules(), match.RankInput{
		Requester:  me,
		Candidates: []db.User{testutil.Profile(9, aged(stale, stale)), testutil.Profile(7, aged(stale, stale))},
		Now:        rankNow,
	})
	require.Len(t, ranked, 2)
	assert.Equal(t, uint64(7), ranked[0].User.ID)
	assert.Equal(t, uint64(9), ranked[1].User.ID)
}

func TestLevelFor(t *testing.T) {
	th := match.DefaultRules().LevelThresholds

	assert.Equal(t, 1, match.LevelFor(0, th))
	assert.Equal(t, 2, match.LevelFor(1, th))
	assert.Equal(t, 2, match.LevelFor(4, th))
	assert.Equal(t, 3, match.LevelFor(7, th))
	assert.Equal(t, 4, match.LevelFor(10, th))
	assert.Equal(t, 5, match.LevelFor(15, th))
	assert.Equal(t, 5, match.LevelFor(1000, th))
	assert.Equal(t, 1, match.LevelFor(-1, th))

	prev := match.LevelFor(0, th)
	for points := 1; points <= 40; points++ {
		lvl := match.LevelFor(points, th)
		assert.GreaterOrEqual(t, lvl, prev, "points %d", points)
		prev = lvl
	}
}
