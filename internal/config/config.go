package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddress string

	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	PasswordPepper  string

	RateLimitMaxRequests int
	RateLimitWindow      time.Duration
	RateLimitKeyStrategy string

	LocalRateLimitRPS       int
	LocalRateLimitBurst     int
	LocalRateLimitCacheSize int
	LocalRateLimitEntryTTL  time.Duration

	VideoServiceURL     string
	AnalyticsServiceURL string

	AllowedOrigins []string
	CookieDomain   string

	TokenSweepInterval time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	for _, key := range []string{
		"HTTP_ADDRESS",
		"DATABASE_URL",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "PASSWORD_PEPPER",
		"RATE_LIMIT_MAX_REQUESTS", "RATE_LIMIT_WINDOW", "RATE_LIMIT_KEY_STRATEGY",
		"LOCAL_RATE_LIMIT_RPS", "LOCAL_RATE_LIMIT_BURST",
		"LOCAL_RATE_LIMIT_CACHE_SIZE", "LOCAL_RATE_LIMIT_ENTRY_TTL",
		"VIDEO_SERVICE_URL", "ANALYTICS_SERVICE_URL",
		"ALLOWED_ORIGINS", "COOKIE_DOMAIN",
		"TOKEN_SWEEP_INTERVAL",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("HTTP_ADDRESS", ":8080")
	viper.SetDefault("ACCESS_TOKEN_TTL", "24h")
	viper.SetDefault("REFRESH_TOKEN_TTL", "168h")
	viper.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "60s")
	viper.SetDefault("RATE_LIMIT_KEY_STRATEGY", "ip")
	viper.SetDefault("LOCAL_RATE_LIMIT_RPS", 50)
	viper.SetDefault("LOCAL_RATE_LIMIT_BURST", 100)
	viper.SetDefault("LOCAL_RATE_LIMIT_CACHE_SIZE", 10_000)
	viper.SetDefault("LOCAL_RATE_LIMIT_ENTRY_TTL", "1h")
	viper.SetDefault("TOKEN_SWEEP_INTERVAL", "1h")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddress:          viper.GetString("HTTP_ADDRESS"),
		DatabaseURL:          viper.GetString("DATABASE_URL"),
		RedisAddress:         viper.GetString("REDIS_ADDRESS"),
		RedisPassword:        viper.GetString("REDIS_PASSWORD"),
		RedisDB:              viper.GetInt("REDIS_DB"),
		JWTSecret:            viper.GetString("JWT_SECRET"),
		AccessTokenTTL:       viper.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:      viper.GetDuration("REFRESH_TOKEN_TTL"),
		PasswordPepper:       viper.GetString("PASSWORD_PEPPER"),
		RateLimitMaxRequests: viper.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitWindow:      viper.GetDuration("RATE_LIMIT_WINDOW"),
		RateLimitKeyStrategy: viper.GetString("RATE_LIMIT_KEY_STRATEGY"),

		LocalRateLimitRPS:       viper.GetInt("LOCAL_RATE_LIMIT_RPS"),
		LocalRateLimitBurst:     viper.GetInt("LOCAL_RATE_LIMIT_BURST"),
		LocalRateLimitCacheSize: viper.GetInt("LOCAL_RATE_LIMIT_CACHE_SIZE"),
		LocalRateLimitEntryTTL:  viper.GetDuration("LOCAL_RATE_LIMIT_ENTRY_TTL"),
		VideoServiceURL:      viper.GetString("VIDEO_SERVICE_URL"),
		AnalyticsServiceURL:  viper.GetString("ANALYTICS_SERVICE_URL"),
		AllowedOrigins:       viper.GetStringSlice("ALLOWED_ORIGINS"),
		CookieDomain:         viper.GetString("COOKIE_DOMAIN"),
		TokenSweepInterval:   viper.GetDuration("TOKEN_SWEEP_INTERVAL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisAddress == "" {
		return nil, fmt.Errorf("REDIS_ADDRESS is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}
	if cfg.RateLimitMaxRequests <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("rate limit thresholds must be positive")
	}
	if cfg.LocalRateLimitRPS <= 0 || cfg.LocalRateLimitBurst <= 0 ||
		cfg.LocalRateLimitCacheSize <= 0 || cfg.LocalRateLimitEntryTTL <= 0 {
		return nil, fmt.Errorf("local rate limit thresholds must be positive")
	}

	return cfg, nil
}
