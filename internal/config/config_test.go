package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://gateway:pw@localhost/gateway")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("JWT_SECRET", "s3cr3t")
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("REFRESH_TOKEN_TTL", "72h")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("access ttl: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 72*time.Hour {
		t.Fatalf("refresh ttl: %v", cfg.RefreshTokenTTL)
	}
	if cfg.RateLimitMaxRequests != 10 || cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("rate limit: %d/%v", cfg.RateLimitMaxRequests, cfg.RateLimitWindow)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddress != ":8080" {
		t.Fatalf("http address: %s", cfg.HTTPAddress)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("default access ttl: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("default refresh ttl: %v", cfg.RefreshTokenTTL)
	}
	if cfg.RateLimitKeyStrategy != "ip" {
		t.Fatalf("default key strategy: %s", cfg.RateLimitKeyStrategy)
	}
	if cfg.LocalRateLimitRPS != 50 || cfg.LocalRateLimitBurst != 100 {
		t.Fatalf("default local rate limit: %d/%d", cfg.LocalRateLimitRPS, cfg.LocalRateLimitBurst)
	}
	if cfg.LocalRateLimitCacheSize != 10_000 || cfg.LocalRateLimitEntryTTL != time.Hour {
		t.Fatalf("default local limiter cache: %d/%v", cfg.LocalRateLimitCacheSize, cfg.LocalRateLimitEntryTTL)
	}
}

func TestLoadLocalRateLimitFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOCAL_RATE_LIMIT_RPS", "5")
	t.Setenv("LOCAL_RATE_LIMIT_BURST", "10")
	t.Setenv("LOCAL_RATE_LIMIT_CACHE_SIZE", "500")
	t.Setenv("LOCAL_RATE_LIMIT_ENTRY_TTL", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LocalRateLimitRPS != 5 || cfg.LocalRateLimitBurst != 10 {
		t.Fatalf("local rate limit: %d/%d", cfg.LocalRateLimitRPS, cfg.LocalRateLimitBurst)
	}
	if cfg.LocalRateLimitCacheSize != 500 || cfg.LocalRateLimitEntryTTL != 10*time.Minute {
		t.Fatalf("local limiter cache: %d/%v", cfg.LocalRateLimitCacheSize, cfg.LocalRateLimitEntryTTL)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "REDIS_ADDRESS", "JWT_SECRET"} {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			os.Unsetenv(key)
			t.Setenv(key, "")
			if _, err := Load(); err == nil {
				t.Fatalf("missing %s must fail", key)
			}
		})
	}
}
