package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists records under "<prefix>:<namespace>:<key>" so several
// clients (one per dashboard operator, for example) can share one Redis.
type RedisStore struct {
	redis     redis.UniversalClient
	prefix    string
	namespace string
}

func NewRedisStore(client redis.UniversalClient, prefix, namespace string) *RedisStore {
	if prefix == "" {
		prefix = "dashauth"
	}
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStore{
		redis:     client,
		prefix:    prefix,
		namespace: namespace,
	}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + s.namespace + ":" + key
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttlDays int) error {
	if err := validKey(key); err != nil {
		return err
	}

	// zero expiration keeps the key until removed
	if err := s.redis.Set(ctx, s.key(key), value, TTL(ttlDays)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}

	value, err := s.redis.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return value, true, nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// TTLRemaining reports the remaining lifetime of a record, zero when absent
// or stored without expiry.
func (s *RedisStore) TTLRemaining(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.redis.TTL(ctx, s.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
