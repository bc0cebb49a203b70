package session

import (
	"context"
	"errors"
	"time"
)

// ErrRedisUnavailable is returned when the Redis backend cannot be reached.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrDatabaseUnavailable is returned when the SQL backend cannot be reached.
var ErrDatabaseUnavailable = errors.New("database unavailable")

// ErrInvalidKey is returned for empty keys.
var ErrInvalidKey = errors.New("invalid persistence key")

// Store is the key/value persistence contract for the access token and the
// cached user record. Values are opaque strings; callers serialize.
//
// ttlDays <= 0 stores the value without expiry. Remove of an absent key is a
// no-op. Get reports presence with the boolean result and returns an error
// only when the backend itself fails.
type Store interface {
	Set(ctx context.Context, key, value string, ttlDays int) error
	Get(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, key string) error
}

// NoopStore is used where no persistence medium exists (server-side render,
// tests of pure logic). Reads always report absent.
type NoopStore struct{}

func (NoopStore) Set(context.Context, string, string, int) error { return nil }

func (NoopStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NoopStore) Remove(context.Context, string) error { return nil }

// TTL converts a day count into a duration. Zero means no expiry.
func TTL(ttlDays int) time.Duration {
	if ttlDays <= 0 {
		return 0
	}
	return time.Duration(ttlDays) * 24 * time.Hour
}

func validKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
