package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// LocalRateLimitPerIP is an in-process token-bucket limiter with an
// expiring LRU of client IPs. It backs the unauthenticated auth endpoints
// as a cheap first line against credential stuffing; the distributed
// filter remains the fleet-wide admission decision.
func LocalRateLimitPerIP(limit, burst, cacheSize int, entryTTL time.Duration) gin.HandlerFunc {
	visitors := lru.NewLRU[string, *rate.Limiter](cacheSize, nil, entryTTL)

	return func(c *gin.Context) {
		host := c.ClientIP()

		lim, found := visitors.Get(host)
		if !found {
			lim = rate.NewLimiter(rate.Limit(limit), burst)
			visitors.Add(host, lim)
		}

		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}
