package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFixedWindow(rdb, "test:", limit, window), mr
}

func TestAllow_WithinLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx, "user@x.com")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	allowed, err := l.Allow(ctx, "user@x.com")
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if allowed {
		t.Fatalf("fourth request should be throttled")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if allowed, _ := l.Allow(ctx, "a@x.com"); !allowed {
		t.Fatalf("first key should be allowed")
	}
	if allowed, _ := l.Allow(ctx, "a@x.com"); allowed {
		t.Fatalf("first key should be exhausted")
	}
	if allowed, _ := l.Allow(ctx, "b@x.com"); !allowed {
		t.Fatalf("second key should have its own quota")
	}
}

func TestAllow_WindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if allowed, _ := l.Allow(ctx, "user@x.com"); !allowed {
		t.Fatalf("first request should pass")
	}
	if allowed, _ := l.Allow(ctx, "user@x.com"); allowed {
		t.Fatalf("second request should be throttled")
	}

	mr.FastForward(time.Minute + time.Second)

	if allowed, _ := l.Allow(ctx, "user@x.com"); !allowed {
		t.Fatalf("request after window should pass again")
	}
}

func TestAllow_DisabledLimiter(t *testing.T) {
	l, _ := newTestLimiter(t, 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := l.Allow(ctx, "user@x.com")
		if err != nil || !allowed {
			t.Fatalf("disabled limiter must always allow (i=%d, allowed=%v, err=%v)", i, allowed, err)
		}
	}

	var nilLimiter *Limiter
	if allowed, err := nilLimiter.Allow(ctx, "x"); err != nil || !allowed {
		t.Fatalf("nil limiter must allow, got allowed=%v err=%v", allowed, err)
	}
}
