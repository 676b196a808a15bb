package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type LogConfig struct {
	Level      string
	Format     string
	Component  string
	Source     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type DBConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	MatchChannel   string
	QuotaCacheTTLH int
}

type GRPCConfig struct {
	Host string
	Port string
}

// MatchConfig carries the tunable matching rules. Zero values fall back to
// the engine defaults.
type MatchConfig struct {
	BaseQuota         int
	BonusCap          int
	RoundRecycleSlack int
	AppendRetries     int
	Timezone          string
}

type Config struct {
	App struct {
		ENV string
	}

	Log   LogConfig
	DB    DBConfig
	Redis RedisConfig
	GRPC  GRPCConfig
	Match MatchConfig
}

// New reads configuration from the environment with sane local defaults.
func New() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "production")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_COMPONENT", "matchd")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_FILE_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_FILE_MAX_BACKUPS", 5)
	v.SetDefault("LOG_FILE_MAX_AGE_DAYS", 14)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "root")
	v.SetDefault("DB_NAME", "mockmatch")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MATCH_CHANNEL", "matches")
	v.SetDefault("REDIS_QUOTA_CACHE_TTL_HOURS", 24)

	v.SetDefault("GRPC_HOST", "127.0.0.1")
	v.SetDefault("GRPC_PORT", "50051")

	v.SetDefault("MATCH_BASE_QUOTA", 0)
	v.SetDefault("MATCH_BONUS_CAP", 0)
	v.SetDefault("MATCH_ROUND_RECYCLE_SLACK", 0)
	v.SetDefault("MATCH_APPEND_RETRIES", 0)
	v.SetDefault("MATCH_TIMEZONE", "UTC")

	cfg := &Config{}
	cfg.App.ENV = v.GetString("APP_ENV")

	// Logger
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")
	cfg.Log.Component = v.GetString("LOG_COMPONENT")
	cfg.Log.Source = isTruthy(v.GetString("LOG_SOURCE"))
	cfg.Log.File = strings.TrimSpace(v.GetString("LOG_FILE"))
	cfg.Log.MaxSizeMB = v.GetInt("LOG_FILE_MAX_SIZE_MB")
	cfg.Log.MaxBackups = v.GetInt("LOG_FILE_MAX_BACKUPS")
	cfg.Log.MaxAgeDays = v.GetInt("LOG_FILE_MAX_AGE_DAYS")

	// Database
	cfg.DB.DSN = strings.TrimSpace(v.GetString("MYSQL_DSN"))
	if cfg.DB.DSN == "" {
		cfg.DB.Host = v.GetString("DB_HOST")
		cfg.DB.Port = v.GetString("DB_PORT")
		cfg.DB.User = v.GetString("DB_USER")
		cfg.DB.Password = v.GetString("DB_PASSWORD")
		cfg.DB.Name = v.GetString("DB_NAME")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.MatchChannel = v.GetString("REDIS_MATCH_CHANNEL")
	cfg.Redis.QuotaCacheTTLH = v.GetInt("REDIS_QUOTA_CACHE_TTL_HOURS")

	// gRPC
	cfg.GRPC.Host = v.GetString("GRPC_HOST")
	cfg.GRPC.Port = v.GetString("GRPC_PORT")

	// Matching rules
	cfg.Match.BaseQuota = v.GetInt("MATCH_BASE_QUOTA")
	cfg.Match.BonusCap = v.GetInt("MATCH_BONUS_CAP")
	cfg.Match.RoundRecycleSlack = v.GetInt("MATCH_ROUND_RECYCLE_SLACK")
	cfg.Match.AppendRetries = v.GetInt("MATCH_APPEND_RETRIES")
	cfg.Match.Timezone = v.GetString("MATCH_TIMEZONE")

	return cfg
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
