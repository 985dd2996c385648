package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/videoanalytics/api-gateway/internal/auth/principal"
	"github.com/videoanalytics/api-gateway/internal/auth/token"
)

const (
	bearerPrefix    = "Bearer "
	userIDHeader    = "X-User-Id"
	userRolesHeader = "X-User-Roles"

	principalKey = "principal"
)

// Authentication verifies the bearer token and translates it into an
// authenticated principal. Downstream services receive identity only via
// the injected headers, never the raw token: this filter is the sole
// point of trust translation.
func Authentication(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(principalKey, principal.Anonymous{})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "missing authorization header",
			})
			return
		}

		raw, found := strings.CutPrefix(header, bearerPrefix)
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "malformed_credential",
				"message": "authorization header must use the Bearer scheme",
			})
			return
		}

		claims, err := codec.Verify(raw, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "access token is invalid or expired",
			})
			return
		}

		p := principal.TokenPrincipal{Sub: claims.Subject, RoleNames: claims.Roles}
		c.Set(principalKey, p)
		c.Request.Header.Set(userIDHeader, p.Sub)
		c.Request.Header.Set(userRolesHeader, strings.Join(p.RoleNames, ","))
		// The raw credential stops here.
		c.Request.Header.Del("Authorization")
		c.Next()
	}
}

// PrincipalFrom returns the principal resolved by the authentication
// filter, or Anonymous when none was set.
func PrincipalFrom(c *gin.Context) principal.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return principal.Anonymous{}
	}
	p, ok := v.(principal.Principal)
	if !ok {
		return principal.Anonymous{}
	}
	return p
}
