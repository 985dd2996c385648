package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/videoanalytics/api-gateway/internal/adapters/transport/http/middleware"
	"github.com/videoanalytics/api-gateway/internal/auth/service"
	"github.com/videoanalytics/api-gateway/internal/auth/token"
	"github.com/videoanalytics/api-gateway/internal/config"
	"github.com/videoanalytics/api-gateway/internal/gateway/proxy"
	"github.com/videoanalytics/api-gateway/internal/repo"
)

// NewRouter assembles the gateway's filter chain and route table.
//
// Filter order on protected routes is rate limit first, then
// authentication: unauthenticated flooding must not reach the signature
// verification path. Each filter honors its own failure policy
// independently.
func NewRouter(
	svc service.AuthService,
	codec *token.Codec,
	counter repo.RateLimitCounter,
	cfg *config.Config,
	log *zap.Logger,
) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics())

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	rateLimit := middleware.RateLimit(counter, middleware.RateLimitConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		KeyStrategy: cfg.RateLimitKeyStrategy,
	}, log)
	authenticate := middleware.Authentication(codec)

	handler := NewAuthHandler(svc, cfg, log)

	// Auth endpoints bypass the access-token filter: they are either
	// unauthenticated or rely on the refresh cookie. A local burst
	// limiter guards the credential-checking paths.
	auth := router.Group("/auth")
	auth.Use(rateLimit)
	auth.Use(middleware.LocalRateLimitPerIP(
		cfg.LocalRateLimitRPS,
		cfg.LocalRateLimitBurst,
		cfg.LocalRateLimitCacheSize,
		cfg.LocalRateLimitEntryTTL,
	))
	{
		auth.POST("/login", handler.Login)
		auth.POST("/register", handler.Register)
		auth.POST("/refresh", handler.Refresh)
		auth.POST("/logout", handler.Logout)
		auth.POST("/logout-all", authenticate, handler.LogoutAll)
	}

	// Protected backend routes: admission first, then trust translation,
	// then the proxied call.
	api := router.Group("/api")
	api.Use(rateLimit)
	api.Use(authenticate)
	for _, route := range backendRoutes(cfg) {
		h, err := proxy.Handler(route.Target, log)
		if err != nil {
			return nil, err
		}
		api.Any(route.Prefix, h)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router, nil
}

func backendRoutes(cfg *config.Config) []proxy.Route {
	var routes []proxy.Route
	if cfg.VideoServiceURL != "" {
		routes = append(routes,
			proxy.Route{Prefix: "/videos/*path", Target: cfg.VideoServiceURL},
			proxy.Route{Prefix: "/sessions/*path", Target: cfg.VideoServiceURL},
			proxy.Route{Prefix: "/likes/*path", Target: cfg.VideoServiceURL},
		)
	}
	if cfg.AnalyticsServiceURL != "" {
		routes = append(routes,
			proxy.Route{Prefix: "/analytics/*path", Target: cfg.AnalyticsServiceURL},
		)
	}
	return routes
}
