package limiters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultResendCooldown = time.Minute

var ErrResendLimiterUnavailable = errors.New("resend limiter unavailable")

// ResendLimiter enforces a quiet period between verification code resends
// for the same address. Remaining returns the wait left (0 when allowed);
// Start begins a new period after a successful send.
type ResendLimiter interface {
	Remaining(ctx context.Context, email string) (time.Duration, error)
	Start(ctx context.Context, email string) error
}

// NewResendLimiter picks the Redis limiter when a client is given, and the
// in-process one otherwise.
func NewResendLimiter(redisClient redis.UniversalClient, cooldown time.Duration, now func() time.Time) ResendLimiter {
	if cooldown <= 0 {
		cooldown = defaultResendCooldown
	}
	if redisClient != nil {
		return &RedisResendLimiter{redis: redisClient, cooldown: cooldown}
	}
	return NewMemoryResendLimiter(cooldown, now)
}

// MemoryResendLimiter keeps cooldown deadlines in process memory.
type MemoryResendLimiter struct {
	mu       sync.Mutex
	until    map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewMemoryResendLimiter(cooldown time.Duration, now func() time.Time) *MemoryResendLimiter {
	if cooldown <= 0 {
		cooldown = defaultResendCooldown
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryResendLimiter{
		until:    make(map[string]time.Time),
		cooldown: cooldown,
		now:      now,
	}
}

func (l *MemoryResendLimiter) Remaining(_ context.Context, email string) (time.Duration, error) {
	if l == nil {
		return 0, nil
	}
	key := normalizeEmail(email)

	l.mu.Lock()
	defer l.mu.Unlock()

	deadline, ok := l.until[key]
	if !ok {
		return 0, nil
	}
	left := deadline.Sub(l.now())
	if left <= 0 {
		delete(l.until, key)
		return 0, nil
	}
	return left, nil
}

func (l *MemoryResendLimiter) Start(_ context.Context, email string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	l.until[normalizeEmail(email)] = l.now().Add(l.cooldown)
	l.mu.Unlock()
	return nil
}

// RedisResendLimiter shares cooldowns between processes through key expiry.
type RedisResendLimiter struct {
	redis    redis.UniversalClient
	cooldown time.Duration
}

func (l *RedisResendLimiter) Remaining(ctx context.Context, email string) (time.Duration, error) {
	if l == nil || l.redis == nil {
		return 0, nil
	}
	ttl, err := l.redis.PTTL(ctx, resendKey(email)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrResendLimiterUnavailable, err)
	}
	// -2 missing, -1 no expiry; neither is an active cooldown
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (l *RedisResendLimiter) Start(ctx context.Context, email string) error {
	if l == nil || l.redis == nil {
		return nil
	}
	if err := l.redis.Set(ctx, resendKey(email), 1, l.cooldown).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrResendLimiterUnavailable, err)
	}
	return nil
}

func resendKey(email string) string {
	return "dashauth:resend:" + normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
