package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	customErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
)

// counterStub mimics the shared store's atomic increment.
type counterStub struct {
	mu     sync.Mutex
	counts map[string]int64
	fail   bool
}

func (s *counterStub) IncrementWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.fail {
		return 0, customErrors.WrapStoreUnavailable(context.DeadlineExceeded, "stub")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func limitedRouter(counter *counterStub, cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(counter, cfg, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func getFrom(r *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_Threshold(t *testing.T) {
	const max = 5
	counter := &counterStub{counts: make(map[string]int64)}
	r := limitedRouter(counter, RateLimitConfig{MaxRequests: max, Window: time.Minute})

	for i := 1; i <= max; i++ {
		if code := getFrom(r, "1.2.3.4:1000"); code != http.StatusOK {
			t.Fatalf("request %d: want 200, got %d", i, code)
		}
	}
	if code := getFrom(r, "1.2.3.4:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("request %d: want 429, got %d", max+1, code)
	}
}

func TestRateLimit_ThresholdConcurrent(t *testing.T) {
	const max = 10
	const total = 25
	counter := &counterStub{counts: make(map[string]int64)}
	r := limitedRouter(counter, RateLimitConfig{MaxRequests: max, Window: time.Minute})

	var ok, limited int64
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch getFrom(r, "9.9.9.9:1") {
			case http.StatusOK:
				atomic.AddInt64(&ok, 1)
			case http.StatusTooManyRequests:
				atomic.AddInt64(&limited, 1)
			}
		}()
	}
	wg.Wait()

	if ok != max || limited != total-max {
		t.Fatalf("want %d ok / %d limited, got %d / %d", max, total-max, ok, limited)
	}
}

func TestRateLimit_IndependentClients(t *testing.T) {
	counter := &counterStub{counts: make(map[string]int64)}
	r := limitedRouter(counter, RateLimitConfig{MaxRequests: 1, Window: time.Minute})

	if code := getFrom(r, "10.0.0.1:1"); code != http.StatusOK {
		t.Fatalf("client A: want 200, got %d", code)
	}
	if code := getFrom(r, "10.0.0.1:1"); code != http.StatusTooManyRequests {
		t.Fatalf("client A second: want 429, got %d", code)
	}
	if code := getFrom(r, "10.0.0.2:1"); code != http.StatusOK {
		t.Fatalf("client B: want 200, got %d", code)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := &counterStub{counts: make(map[string]int64), fail: true}
	r := limitedRouter(counter, RateLimitConfig{MaxRequests: 1, Window: time.Minute})

	// Well past the threshold, concurrently: everything goes through and
	// no error surfaces to the caller.
	const n = 10
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = getFrom(r, "1.2.3.4:1")
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("request %d: fail-open must admit, got %d", i, code)
		}
	}
}

func TestRateLimit_HeaderKeyStrategy(t *testing.T) {
	counter := &counterStub{counts: make(map[string]int64)}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(counter, RateLimitConfig{
		MaxRequests: 1, Window: time.Minute, KeyStrategy: "header:X-Api-Key",
	}, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(apiKey string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "1.1.1.1:1"
		if apiKey != "" {
			req.Header.Set("X-Api-Key", apiKey)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := get("key-a"); code != http.StatusOK {
		t.Fatalf("key-a: want 200, got %d", code)
	}
	if code := get("key-a"); code != http.StatusTooManyRequests {
		t.Fatalf("key-a second: want 429, got %d", code)
	}
	// A different key is a different budget even from the same IP.
	if code := get("key-b"); code != http.StatusOK {
		t.Fatalf("key-b: want 200, got %d", code)
	}
}

func TestLocalRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LocalRateLimitPerIP(1, 1, 100, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	if code := getFrom(r, "1.2.3.4:12345"); code != http.StatusOK {
		t.Fatalf("first request: want 200, got %d", code)
	}
	if code := getFrom(r, "1.2.3.4:12345"); code != http.StatusTooManyRequests {
		t.Fatalf("burst exceeded: want 429, got %d", code)
	}
	if code := getFrom(r, "5.6.7.8:12345"); code != http.StatusOK {
		t.Fatalf("other host: want 200, got %d", code)
	}
}
