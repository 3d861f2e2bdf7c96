package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/quotafence/quotafence/internal/config"
	"github.com/quotafence/quotafence/internal/core/fetch"
	"github.com/quotafence/quotafence/internal/core/kv"
	"github.com/quotafence/quotafence/internal/core/quota"
	"github.com/quotafence/quotafence/internal/core/store"
	"github.com/quotafence/quotafence/internal/core/throttle"
)

// openStore opens the libsql store for admin commands, which operate on the
// stored counters directly.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Driver == "redis" {
		return nil, fmt.Errorf("quota admin commands require the libsql store driver")
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// openKV opens the configured counter store backend. The returned closer
// releases the underlying connection.
func openKV(ctx context.Context, cfg *config.Config) (kv.Store, func() error, error) {
	switch cfg.Store.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis store: %w", err)
		}
		return kv.NewRedis(client), client.Close, nil
	default:
		db, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return db, db.Close, nil
	}
}

func buildTracker(cfg *config.Config, s kv.Store) *quota.Tracker {
	return &quota.Tracker{
		Store:     s,
		Policies:  cfg.Quota.CorePolicies(),
		Namespace: cfg.Quota.Namespace,
	}
}

func buildFetcher(cfg *config.Config, thr *throttle.Throttle) *fetch.Client {
	return &fetch.Client{
		Throttle:  thr,
		HTTP:      &http.Client{Timeout: cfg.Fetch.Timeout},
		UserAgent: cfg.Fetch.UserAgent,
	}
}
