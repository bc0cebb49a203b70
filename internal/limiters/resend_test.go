package limiters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryResendLimiterCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryResendLimiter(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	if left, _ := l.Remaining(ctx, "a@b.com"); left != 0 {
		t.Fatalf("expected no cooldown before start, got %v", left)
	}
	if err := l.Start(ctx, "A@B.com "); err != nil {
		t.Fatalf("Start: %v", err)
	}

	now = now.Add(20 * time.Second)
	left, err := l.Remaining(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if left != 40*time.Second {
		t.Fatalf("expected 40s left, got %v", left)
	}
	if other, _ := l.Remaining(ctx, "c@d.com"); other != 0 {
		t.Fatalf("expected cooldowns to be per address, got %v", other)
	}

	now = now.Add(40 * time.Second)
	if left, _ := l.Remaining(ctx, "a@b.com"); left != 0 {
		t.Fatalf("expected cooldown to end, got %v", left)
	}
}

func TestRedisResendLimiterCooldown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	l := NewResendLimiter(rdb, time.Minute, nil)
	ctx := context.Background()

	if left, err := l.Remaining(ctx, "a@b.com"); err != nil || left != 0 {
		t.Fatalf("expected no cooldown, got %v err=%v", left, err)
	}
	if err := l.Start(ctx, "a@b.com"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	left, err := l.Remaining(ctx, "A@B.COM")
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if left <= 0 || left > time.Minute {
		t.Fatalf("expected active cooldown up to 1m, got %v", left)
	}

	mr.FastForward(61 * time.Second)
	if left, _ := l.Remaining(ctx, "a@b.com"); left != 0 {
		t.Fatalf("expected cooldown to expire, got %v", left)
	}
}

func TestRedisResendLimiterUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	l := NewResendLimiter(rdb, time.Minute, nil)
	if _, err := l.Remaining(context.Background(), "a@b.com"); !errors.Is(err, ErrResendLimiterUnavailable) {
		t.Fatalf("expected ErrResendLimiterUnavailable, got %v", err)
	}
	if err := l.Start(context.Background(), "a@b.com"); !errors.Is(err, ErrResendLimiterUnavailable) {
		t.Fatalf("expected ErrResendLimiterUnavailable, got %v", err)
	}
}

func TestNilResendLimitersAllow(t *testing.T) {
	var m *MemoryResendLimiter
	var r *RedisResendLimiter
	if left, err := m.Remaining(context.Background(), "a@b.com"); left != 0 || err != nil {
		t.Fatal("nil memory limiter should allow")
	}
	if left, err := r.Remaining(context.Background(), "a@b.com"); left != 0 || err != nil {
		t.Fatal("nil redis limiter should allow")
	}
}
