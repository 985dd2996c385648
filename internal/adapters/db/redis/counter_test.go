package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"

	customErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
)

func newCounter(t *testing.T) (*Counter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)

	client := redisv9.NewClient(&redisv9.Options{
		Addr: mr.Addr(),
	})
	return NewCounter(client), mr
}

func TestCounter_SequentialIncrements(t *testing.T) {
	counter, _ := newCounter(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := counter.IncrementWithExpiry(ctx, "1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Fatalf("count: want %d got %d", want, got)
		}
	}
}

func TestCounter_IndependentKeys(t *testing.T) {
	counter, _ := newCounter(t)
	ctx := context.Background()

	if _, err := counter.IncrementWithExpiry(ctx, "a", time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := counter.IncrementWithExpiry(ctx, "b", time.Minute)
	if err != nil || got != 1 {
		t.Fatalf("key b: want 1 got %d err %v", got, err)
	}
}

func TestCounter_ExpirySetOnFirstIncrementOnly(t *testing.T) {
	counter, mr := newCounter(t)
	ctx := context.Background()

	if _, err := counter.IncrementWithExpiry(ctx, "k", time.Minute); err != nil {
		t.Fatal(err)
	}
	ttl := mr.TTL("rate_limit:k")
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl after first increment: %v", ttl)
	}

	// Later increments must not extend the window.
	mr.FastForward(30 * time.Second)
	if _, err := counter.IncrementWithExpiry(ctx, "k", time.Minute); err != nil {
		t.Fatal(err)
	}
	if got := mr.TTL("rate_limit:k"); got > 30*time.Second {
		t.Fatalf("ttl was extended mid-window: %v", got)
	}
}

func TestCounter_WindowResets(t *testing.T) {
	counter, mr := newCounter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := counter.IncrementWithExpiry(ctx, "k", time.Second); err != nil {
			t.Fatal(err)
		}
	}
	mr.FastForward(2 * time.Second)

	got, err := counter.IncrementWithExpiry(ctx, "k", time.Second)
	if err != nil || got != 1 {
		t.Fatalf("after window: want 1 got %d err %v", got, err)
	}
}

func TestCounter_ConcurrentIncrements(t *testing.T) {
	counter, _ := newCounter(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := counter.IncrementWithExpiry(ctx, "hot", time.Minute); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := counter.IncrementWithExpiry(ctx, "hot", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if got != n+1 {
		t.Fatalf("count after %d concurrent increments: %d", n, got)
	}
}

func TestCounter_StoreDown(t *testing.T) {
	counter, mr := newCounter(t)
	mr.Close()

	_, err := counter.IncrementWithExpiry(context.Background(), "k", time.Minute)
	if !customErrors.IsStoreUnavailable(err) {
		t.Fatalf("want store unavailable, got %v", err)
	}
}
