// Package testutil spins up isolated stores for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/mockmatch/internal/db"
)

// OpenDB opens a migrated in-memory SQLite database private to t.
//
// A single connection is used so transactions and plain queries never race
// on SQLite's table locks.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// StartRedis runs a miniredis instance for the duration of t.
func StartRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

// Profile returns a complete profile; opts tweak it before insertion.
func Profile(id uint64, opts ...func(*db.User)) db.User {
	u := db.User{
		ID:                id,
		Username:          fmt.Sprintf("user%d", id),
		Email:             fmt.Sprintf("user%d@test.com", id),
		PasswordHash:      "x",
		Active:            true,
		JobType:           "backend",
		ExperienceLevel:   "mid",
		PracticeTechnical: true,
		ContactWechat:     fmt.Sprintf("wx%d", id),
	}
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

// CreateUsers inserts the given users.
func CreateUsers(t *testing.T, gdb *gorm.DB, users ...db.User) {
	t.Helper()
	require.NoError(t, gdb.Create(&users).Error)
}
