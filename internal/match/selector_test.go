package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/match"
	"github.com/oggyb/mockmatch/internal/testutil"
)

func candidateIDs(sel match.Selection) []uint64 {
	ids := make([]uint64, len(sel.Candidates))
	for i, c := range sel.Candidates {
		ids[i] = c.User.ID
	}
	return ids
}

func TestCandidates_IncompleteProfile(t *testing.T) {
	f := newFixture(t,
		testutil.Profile(1, func(u *db.User) { u.ContactWechat = "" }),
		testutil.Profile(2),
	)

	_, err := f.selector.Candidates(context.Background(), 1, testNow)
	assert.ErrorIs(t, err, match.ErrProfileIncomplete)

	_, err = f.selector.Candidates(context.Background(), 99, testNow)
	assert.ErrorIs(t, err, match.ErrUserNotFound)
}

func TestCandidates_InactiveRequester(t *testing.T) {
	f := newFixture(t, users(3)...)
	require.NoError(t, f.gdb.Model(&db.User{}).Where("id = ?", 1).Update("active", false).Error)

	_, err := f.selector.Candidates(context.Background(), 1, testNow)
	assert.ErrorIs(t, err, match.ErrProfileIncomplete)
}

func TestCandidates_LimitedToDailyQuota(t *testing.T) {
	f := newFixture(t, users(10)...)

	sel, err := f.selector.Candidates(context.Background(), 1, testNow)
	require.NoError(t, err)
	assert.Len(t, sel.Candidates, 4)
	assert.Equal(t, match.RoundFirst, sel.Round)
	assert.Equal(t, 4, sel.DailyLimit)
	assert.NotContains(t, candidateIDs(sel), uint64(1))
}

func TestCandidates_BonusRaisesLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(10)...)

	_, err := f.quota.GrantBonus(ctx, 1, testDay, 2)
	require.NoError(t, err)

	sel, err := f.selector.Candidates(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Len(t, sel.Candidates, 6)
}

func TestCandidates_ExhaustedIsEmpty(t *testing.T) {
	f := newFixture(t, users(10)...)
	f.seedViews(t, 1, testDay, 2, 3, 4, 5)

	sel, err := f.selector.Candidates(context.Background(), 1, testNow)
	require.NoError(t, err)
	assert.True(t, sel.Exhausted)
	assert.Empty(t, sel.Candidates)
	assert.Equal(t, 4, sel.ShownToday)
}

func TestCandidates_FiltersIneligible(t *testing.T) {
	f := newFixture(t,
		testutil.Profile(1),
		testutil.Profile(2),
		testutil.Profile(3, func(u *db.User) { u.JobType = "" }),
		testutil.Profile(4, func(u *db.User) { u.PracticeTechnical = false }),
		testutil.Profile(5, func(u *db.User) { u.ContactWechat = "" }),
		testutil.Profile(6, func(u *db.User) {
			u.ContactWechat = ""
			u.ContactPhone = "555-0100"
		}),
	)

	sel, err := f.selector.Candidates(context.Background(), 1, testNow)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{2, 6}, candidateIDs(sel))
}

func TestCandidates_FirstRoundExcludesViewedAndPartners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(8)...)

	// viewed on an earlier day
	f.seedViews(t, 1, "2023-12-30", 2, 3)
	// viewed today
	f.seedViews(t, 1, testDay, 4)
	// matched with 5
	_, err := f.relations.Like(ctx, 5, 1, "2023-12-30")
	require.NoError(t, err)
	_, err = f.relations.Like(ctx, 1, 5, "2023-12-30")
	require.NoError(t, err)

	sel, err := f.selector.Candidates(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, match.RoundFirst, sel.Round)
	assert.ElementsMatch(t, []uint64{6, 7, 8}, candidateIDs(sel))
}

func TestCandidates_InviterSurfacesFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(8)...)

	// 1 saw 6 on an earlier day; 6 has since sent a like that 1 has not answered
	f.seedViews(t, 1, "2023-12-30", 6)
	_, err := f.relations.Like(ctx, 6, 1, "2023-12-31")
	require.NoError(t, err)

	sel, err := f.selector.Candidates(ctx, 1, testNow)
	require.NoError(t, err)
	require.NotEmpty(t, sel.Candidates)
	assert.Equal(t, uint64(6), sel.Candidates[0].User.ID)
	assert.Equal(t, match.BucketInvited, sel.Candidates[0].Bucket)
	assert.True(t, sel.Candidates[0].Invited)
}

func TestCandidates_AnsweredInviterStaysExcluded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(4)...)

	_, err := f.relations.Like(ctx, 3, 1, "2023-12-30")
	require.NoError(t, err)
	_, err = f.relations.Dislike(ctx, 1, 3, "2023-12-30")
	require.NoError(t, err)

	sel, err := f.selector.Candidates(ctx, 1, testNow)
	require.NoError(t, err)
	assert.NotContains(t, candidateIDs(sel), uint64(3))
}

func TestCandidates_SecondRoundRecycles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(5)...)

	// 1 has seen every other eligible user before today; 2 is a partner
	f.seedViews(t, 1, "2023-12-30", 2, 3, 4, 5)
	_, err := f.relations.Like(ctx, 2, 1, "2023-12-30")
	require.NoError(t, err)
	_, err = f.relations.Like(ctx, 1, 2, "2023-12-30")
	require.NoError(t, err)
	// 4 already shown again today
	f.seedViews(t, 1, testDay, 4)

	sel, err := f.selector.Candidates(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, match.RoundSecond, sel.Round)
	assert.ElementsMatch(t, []uint64{3, 5}, candidateIDs(sel))
}

func TestCandidates_SecondRoundInviterShownTodayStaysOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(4)...)

	// everyone was seen before today, so 1 is in the second round
	f.seedViews(t, 1, "2023-12-30", 2, 3, 4)
	_, err := f.relations.Dislike(ctx, 1, 2, "2023-12-30")
	require.NoError(t, err)
	_, err = f.relations.Like(ctx, 2, 1, "2023-12-31")
	require.NoError(t, err)

	// a repeated dislike writes nothing but still counts as shown today
	outcome, err := f.relations.Dislike(ctx, 1, 2, testDay)
	require.NoError(t, err)
	assert.Equal(t, match.DislikeAlready, outcome)

	sel, err := f.selector.Candidates(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, match.RoundSecond, sel.Round)
	assert.NotContains(t, candidateIDs(sel), uint64(2))
	assert.ElementsMatch(t, []uint64{3, 4}, candidateIDs(sel))
}

func TestCandidates_FirstRoundInviterShownTodaySurfaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(8)...)

	f.seedViews(t, 1, testDay, 6)
	_, err := f.relations.Like(ctx, 6, 1, testDay)
	require.NoError(t, err)

	sel, err := f.selector.Candidates(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, match.RoundFirst, sel.Round)
	require.NotEmpty(t, sel.Candidates)
	assert.Equal(t, uint64(6), sel.Candidates[0].User.ID)
}

func TestCandidates_RoundSlackIsConfigurable(t *testing.T) {
	rules := match.DefaultRules()
	rules.RoundRecycleSlack = 2
	f := newFixtureWithRules(t, rules, users(5)...)

	// 3 of 4 others seen: first round with slack 1, second with slack 2
	f.seedViews(t, 1, "2023-12-30", 2, 3, 4)

	sel, err := f.selector.Candidates(context.Background(), 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, match.RoundSecond, sel.Round)
	assert.ElementsMatch(t, []uint64{2, 3, 4, 5}, candidateIDs(sel))
}

func TestCandidates_Deterministic(t *testing.T) {
	f := newFixture(t, users(12)...)

	first, err := f.selector.Candidates(context.Background(), 1, testNow)
	require.NoError(t, err)
	for n := 0; n < 3; n++ {
		again, err := f.selector.Candidates(context.Background(), 1, testNow)
		require.NoError(t, err)
		assert.Equal(t, candidateIDs(first), candidateIDs(again))
	}
}

func TestCandidates_ExperienceRanksHigher(t *testing.T) {
	f := newFixture(t, users(6)...)

	require.NoError(t, f.gdb.Create(&[]db.Feedback{
		{UserID: 5, PartnerID: 2, InterviewStatus: db.InterviewPassed},
		{UserID: 5, PartnerID: 3, InterviewStatus: db.InterviewPassed},
		{UserID: 6, PartnerID: 2, InterviewStatus: db.InterviewPassed},
		{UserID: 4, PartnerID: 2, InterviewStatus: "no"},
	}).Error)

	sel, err := f.selector.Candidates(context.Background(), 1, testNow)
	require.NoError(t, err)
	require.Len(t, sel.Candidates, 4)
	assert.Equal(t, []uint64{5, 6, 2, 3}, candidateIDs(sel))
	assert.Equal(t, 2, sel.Candidates[0].ExperiencePoints)
	assert.Equal(t, 2, sel.Candidates[0].Level)
}
