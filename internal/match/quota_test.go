package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/match"
)

func TestQuotaLedger_EnsureTodayInheritsBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(1)...)

	require.NoError(t, f.gdb.Create(&db.DailyBonusLedger{UserID: 1, Day: "2023-12-28", BonusBalance: 5, BonusGrantedToday: 2}).Error)
	require.NoError(t, f.gdb.Create(&db.DailyBonusLedger{UserID: 1, Day: "2023-12-30", BonusBalance: 3, BonusGrantedToday: 1}).Error)

	row, err := f.quota.EnsureToday(ctx, 1, testDay)
	require.NoError(t, err)
	assert.Equal(t, 3, row.BonusBalance)
	assert.Equal(t, 0, row.BonusGrantedToday)

	// second call returns the same row
	again, err := f.quota.EnsureToday(ctx, 1, testDay)
	require.NoError(t, err)
	assert.Equal(t, row.ID, again.ID)

	var rows int64
	require.NoError(t, f.gdb.Model(&db.DailyBonusLedger{}).Where("user_id = ? AND day = ?", 1, testDay).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestQuotaLedger_EnsureTodayWithoutHistory(t *testing.T) {
	f := newFixture(t, users(1)...)

	row, err := f.quota.EnsureToday(context.Background(), 1, testDay)
	require.NoError(t, err)
	assert.Equal(t, 0, row.BonusBalance)
}

func TestQuotaLedger_DailyLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(1)...)

	assert.Equal(t, 4, f.quota.DailyLimit(ctx, 1, testDay))

	_, err := f.quota.GrantBonus(ctx, 1, testDay, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, f.quota.DailyLimit(ctx, 1, testDay))
}

func TestQuotaLedger_DailyLimitFallsBackOnStoreFailure(t *testing.T) {
	f := newFixture(t, users(1)...)

	sqlDB, err := f.gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Equal(t, 4, f.quota.DailyLimit(context.Background(), 1, testDay))
}

func TestQuotaLedger_ConsumeUntilExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(1)...)

	_, err := f.quota.GrantBonus(ctx, 1, testDay, 2)
	require.NoError(t, err)

	require.NoError(t, f.quota.Consume(ctx, 1, testDay))
	require.NoError(t, f.quota.Consume(ctx, 1, testDay))
	assert.ErrorIs(t, f.quota.Consume(ctx, 1, testDay), match.ErrQuotaExhausted)

	row, err := f.quota.EnsureToday(ctx, 1, testDay)
	require.NoError(t, err)
	assert.Equal(t, 0, row.BonusBalance)
	assert.Equal(t, 2, row.BonusUsedToday)

	// spending bonus does not shrink the day's limit
	assert.Equal(t, 6, f.quota.DailyLimit(ctx, 1, testDay))
}

func TestQuotaLedger_GrantBonusIsCapped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(1)...)

	row, err := f.quota.GrantBonus(ctx, 1, testDay, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, row.BonusBalance)

	row, err = f.quota.GrantBonus(ctx, 1, testDay, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, row.BonusBalance)
	assert.Equal(t, 9, row.BonusGrantedToday)

	_, err = f.quota.GrantBonus(ctx, 1, testDay, 0)
	assert.ErrorIs(t, err, match.ErrInvalidAmount)
	_, err = f.quota.GrantBonus(ctx, 1, testDay, -3)
	assert.ErrorIs(t, err, match.ErrInvalidAmount)
}

func TestQuotaLedger_BalanceCarriesIntoNextDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, users(1)...)

	_, err := f.quota.GrantBonus(ctx, 1, "2023-12-31", 3)
	require.NoError(t, err)
	require.NoError(t, f.quota.Consume(ctx, 1, "2023-12-31"))

	row, err := f.quota.EnsureToday(ctx, 1, testDay)
	require.NoError(t, err)
	assert.Equal(t, 2, row.BonusBalance)
	assert.Equal(t, 0, row.BonusGrantedToday)
}
