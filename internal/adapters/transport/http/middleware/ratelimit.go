package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/videoanalytics/api-gateway/internal/repo"
)

// RateLimitConfig is the admission policy for one filter instance.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	// KeyStrategy derives the client key: "ip" (default), "subject",
	// or "header:<name>". "subject" keys by the authenticated principal
	// and therefore only takes effect when an authentication filter runs
	// ahead of this one; under the gateway's admission-first ordering no
	// principal is resolved yet and the strategy falls back to client IP.
	KeyStrategy string
}

// RateLimit is the distributed admission filter. The shared counter store
// makes decisions consistent across gateway instances; when the store is
// unreachable the filter fails open and lets the request through
// unthrottled rather than taking the gateway down with it.
func RateLimit(counter repo.RateLimitCounter, cfg RateLimitConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c, cfg.KeyStrategy)

		count, err := counter.IncrementWithExpiry(c.Request.Context(), key, cfg.Window)
		if err != nil {
			log.Warn("rate limit counter unavailable, failing open",
				zap.String("key", key),
				zap.Error(err),
			)
			failOpenTotal.Inc()
			c.Next()
			return
		}

		if count > int64(cfg.MaxRequests) {
			rateLimitedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}

func clientKey(c *gin.Context, strategy string) string {
	switch {
	case strategy == "subject":
		if p := PrincipalFrom(c); p.Authenticated() {
			return "sub:" + p.Subject()
		}
		return c.ClientIP()
	case strings.HasPrefix(strategy, "header:"):
		if v := c.GetHeader(strings.TrimPrefix(strategy, "header:")); v != "" {
			return v
		}
		return c.ClientIP()
	default:
		return c.ClientIP()
	}
}
