package assist

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if err := rl.AllowRequest(context.Background()); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	release, err := rl.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()
}

func TestRateLimiter_NilIsUnlimited(t *testing.T) {
	var rl *RateLimiter
	if err := rl.AllowRequest(context.Background()); err != nil {
		t.Fatalf("AllowRequest: %v", err)
	}
	release, err := rl.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()
}

func TestRateLimiter_RequestBurst(t *testing.T) {
	rl := NewRateLimiter(2, 0)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := rl.AllowRequest(ctx); err != nil {
			t.Fatalf("burst request %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := rl.AllowRequest(ctx); err == nil {
		t.Fatal("expected third request to exceed the limit")
	}
}

func TestRateLimiter_Concurrency(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	release, err := rl.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := rl.Acquire(ctx); err == nil {
		t.Fatal("expected second acquire to block")
	}

	release()
	release2, err := rl.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()
}
