package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/videoanalytics/api-gateway/internal/adapters/transport/http/middleware"
	"github.com/videoanalytics/api-gateway/internal/auth/dto"
	authErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
	"github.com/videoanalytics/api-gateway/internal/auth/model"
	"github.com/videoanalytics/api-gateway/internal/auth/service"
	"github.com/videoanalytics/api-gateway/internal/config"
)

const refreshCookie = "refresh_token"

// AuthHandler exposes the credential lifecycle over HTTP. The refresh
// token travels in an HTTP-only cookie scoped to the auth path; the
// access token only ever appears in the JSON body.
type AuthHandler struct {
	svc service.AuthService
	cfg *config.Config
	log *zap.Logger
}

func NewAuthHandler(svc service.AuthService, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg, log: log}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": err.Error()})
		return
	}
	h.log.Info("login", zap.String("username", body.Username))

	pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.issueTokens(c, pair)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": err.Error()})
		return
	}
	h.log.Info("register", zap.String("username", body.Username))

	pair, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.issueTokens(c, pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	value, err := c.Cookie(refreshCookie)
	if err != nil || value == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "message": "missing refresh token"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), dto.RefreshDTO{RefreshToken: value})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.issueTokens(c, pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	value, _ := c.Cookie(refreshCookie)

	if err := h.svc.Logout(c.Request.Context(), dto.LogoutDTO{RefreshToken: value}); err != nil {
		h.handleError(c, err)
		return
	}
	h.clearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// LogoutAll revokes every refresh token of the authenticated subject.
// Unlike the other auth endpoints it sits behind the authentication
// filter, since it acts on an identity rather than a presented token.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if !p.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	if err := h.svc.LogoutAll(c.Request.Context(), p.Subject()); err != nil {
		h.handleError(c, err)
		return
	}
	h.clearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out everywhere"})
}

func (h *AuthHandler) issueTokens(c *gin.Context, pair model.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		refreshCookie,
		pair.RefreshToken,
		int(pair.RefreshTTL.Seconds()),
		"/auth",
		h.cfg.CookieDomain,
		true, // secure
		true, // httpOnly
	)
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, "", -1, "/auth", h.cfg.CookieDomain, true, true)
}

func (h *AuthHandler) handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": err.Error()})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already_exists", "message": "username or email already registered"})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": "invalid username or password"})
	case authErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "message": "token is invalid, expired or revoked"})
	case authErrors.IsRateLimited(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate_limit_exceeded", "message": "rate limit exceeded, try again later"})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "resource not found"})
	default:
		// Internal detail never crosses the boundary.
		h.log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "internal server error"})
	}
}
