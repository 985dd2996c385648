package service

import (
	"context"
	"time"

	validate "github.com/go-playground/validator/v10"

	"github.com/videoanalytics/api-gateway/internal/auth/dto"
	"github.com/videoanalytics/api-gateway/internal/auth/model"
	"github.com/videoanalytics/api-gateway/internal/auth/token"
	"github.com/videoanalytics/api-gateway/internal/config"
	"github.com/videoanalytics/api-gateway/internal/repo"
)

// AuthService orchestrates the credential lifecycle: login, registration,
// refresh rotation, and revocation. It holds no server-side session state.
type AuthService interface {
	Login(ctx context.Context, dto dto.LoginDTO) (model.TokenPair, error)
	Register(ctx context.Context, dto dto.RegisterDTO) (model.TokenPair, error)
	Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error)
	Logout(ctx context.Context, dto dto.LogoutDTO) error
	LogoutAll(ctx context.Context, username string) error
	Validate(raw string, now time.Time) (token.Claims, error)
}

func NewAuthService(
	userRepo repo.UserRepo,
	roleRepo repo.RoleRepo,
	tokenRepo repo.RefreshTokenRepo,
	codec *token.Codec,
	cfg *config.Config,
	v *validate.Validate,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		tokenRepo: tokenRepo,
		codec:     codec,
		cfg:       cfg,
		v:         v,
	}
}
