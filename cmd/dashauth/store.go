package main

import (
	"context"
	"fmt"
	"log/slog"

	dashAuth "github.com/MrEthical07/dashAuth"
	"github.com/MrEthical07/dashAuth/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// cliStore remembers the redis client, if any, so the resend cooldown can
// share it.
type cliStore struct {
	session.Store
	client redis.UniversalClient
}

func (s cliStore) redisClient() redis.UniversalClient { return s.client }

// storeTarget is where credentials live. An empty DatabaseURL and RedisAddr
// means an in-process miniredis.
type storeTarget struct {
	DatabaseURL string
	RedisAddr   string
	RedisPrefix string
	Table       string
	Namespace   string
}

// resolveStore applies flag, then config, then default precedence. The
// config already carries DATABASE_URL and REDIS_ADDR from the environment.
func resolveStore(opts options, p dashAuth.PersistenceConfig) storeTarget {
	t := storeTarget{
		DatabaseURL: firstNonEmpty(opts.databaseURL, p.DatabaseURL),
		RedisAddr:   firstNonEmpty(opts.redisAddr, p.RedisAddr),
		RedisPrefix: p.RedisPrefix,
		Table:       p.Table,
		Namespace:   firstNonEmpty(opts.namespace, p.Namespace, "cli"),
	}
	if opts.redisAddr != "" && opts.databaseURL == "" {
		// an explicit redis flag beats a configured database
		t.DatabaseURL = ""
	}
	return t
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func openStore(ctx context.Context, t storeTarget, logger *slog.Logger) (cliStore, func(), error) {
	if t.DatabaseURL != "" {
		pool, err := session.OpenPostgres(ctx, t.DatabaseURL)
		if err != nil {
			return cliStore{}, nil, err
		}
		store := session.NewPostgresStore(pool, t.Table, t.Namespace)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return cliStore{}, nil, err
		}
		logger.Debug("using postgres session store")
		return cliStore{Store: store}, pool.Close, nil
	}

	addr := t.RedisAddr
	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return cliStore{}, nil, fmt.Errorf("failed to start miniredis: %w", err)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		logger.Debug("using miniredis", "addr", addr)
	} else {
		logger.Debug("using redis", "addr", addr)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		if cleanup != nil {
			cleanup()
		}
		return cliStore{}, nil, fmt.Errorf("redis at %s: %w", addr, err)
	}

	closeFn := func() {
		_ = client.Close()
		if cleanup != nil {
			cleanup()
		}
	}
	return cliStore{Store: session.NewRedisStore(client, t.RedisPrefix, t.Namespace), client: client}, closeFn, nil
}
