package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/mockmatch/internal/cache"
	"github.com/oggyb/mockmatch/internal/config"
	"github.com/oggyb/mockmatch/internal/match"
	"github.com/oggyb/mockmatch/internal/repository"
)

// AppContext holds shared dependencies (DB, Redis, Logger, engine, etc.)
type AppContext struct {
	DB         *gorm.DB
	Store      *repository.Store
	RedisCache *cache.RedisCache
	Engine     *match.Engine
	Logger     *slog.Logger
}

// New creates a new AppContext and wires the matching engine on top of it.
// rdb may be nil, in which case quota counts are not cached and matches
// are not published.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) (*AppContext, error) {
	rules, err := match.RulesFromConfig(cfg.Match)
	if err != nil {
		return nil, fmt.Errorf("match rules: %w", err)
	}

	store := repository.NewStore(db)
	opts := []match.Option{match.WithLogger(logger)}
	if rdb != nil {
		opts = append(opts, match.WithQuotaCache(rdb), match.WithNotifier(rdb))
	}

	return &AppContext{
		DB:         db,
		Store:      store,
		RedisCache: rdb,
		Engine:     match.NewEngine(store, rules, opts...),
		Logger:     logger,
	}, nil
}
