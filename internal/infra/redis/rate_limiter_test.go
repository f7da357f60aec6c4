package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	cli := newMemClient()
	rl := NewRateLimiter(cli, 3, time.Minute)
	key := ClientRouteKey("10.0.0.1", "/api/vouchers/check")

	for i := 1; i <= 3; i++ {
		ok, err := rl.Allow(ctx, key)
		if err != nil || !ok {
			t.Fatalf("hit %d: allowed=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := rl.Allow(ctx, key); ok {
		t.Fatal("fourth hit must be refused")
	}
	if cli.ttls[key] != time.Minute {
		t.Fatalf("window not armed, ttl=%s", cli.ttls[key])
	}
	if ok, _ := rl.Allow(ctx, ClientRouteKey("10.0.0.2", "/api/vouchers/check")); !ok {
		t.Fatal("other clients have their own window")
	}
}

func TestRateLimiter_Error(t *testing.T) {
	cli := newMemClient()
	cli.IncrErr = errors.New("redis down")
	if _, err := NewRateLimiter(cli, 1, time.Second).Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected error")
	}
}
