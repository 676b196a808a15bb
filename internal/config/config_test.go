package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("DB_NAME", "")

	cfg := New()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "matchd", cfg.Log.Component)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "matches", cfg.Redis.MatchChannel)
	assert.Equal(t, "50051", cfg.GRPC.Port)
	assert.Equal(t, "UTC", cfg.Match.Timezone)
	assert.Contains(t, cfg.DB.DSN, "@tcp(localhost:3306)/")
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/x")
	t.Setenv("LOG_SOURCE", "yes")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MATCH_BASE_QUOTA", "6")
	t.Setenv("MATCH_BONUS_CAP", "10")

	cfg := New()

	assert.Equal(t, "u:p@tcp(db:3306)/x", cfg.DB.DSN)
	assert.True(t, cfg.Log.Source)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 6, cfg.Match.BaseQuota)
	assert.Equal(t, 10, cfg.Match.BonusCap)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "off", "nope"} {
		assert.False(t, isTruthy(v), v)
	}
}
