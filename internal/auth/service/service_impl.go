package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	validate "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/videoanalytics/api-gateway/internal/auth/dto"
	customErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
	"github.com/videoanalytics/api-gateway/internal/auth/model"
	"github.com/videoanalytics/api-gateway/internal/auth/token"
	"github.com/videoanalytics/api-gateway/internal/config"
	"github.com/videoanalytics/api-gateway/internal/repo"
)

type authService struct {
	userRepo  repo.UserRepo
	roleRepo  repo.RoleRepo
	tokenRepo repo.RefreshTokenRepo
	codec     *token.Codec
	cfg       *config.Config
	v         *validate.Validate
}

func (a *authService) Login(ctx context.Context, dto dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByUsername(ctx, dto.Username)
	if errors.Is(err, customErrors.ErrNotFound) {
		// Unknown user and wrong password are indistinguishable.
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(dto.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	return a.issuePair(ctx, user)
}

func (a *authService) Register(ctx context.Context, dto dto.RegisterDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	roles, err := a.resolveRoles(ctx, dto.Roles)
	if err != nil {
		return model.TokenPair{}, err
	}

	passwordHash, err := argon2id.CreateHash(dto.Password+a.cfg.PasswordPepper, argon2id.DefaultParams)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		ID:           uuid.New(),
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: passwordHash,
		Roles:        roles,
	}
	if _, err := a.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.TokenPair{}, customErrors.ErrAlreadyExists
		}
		return model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	return a.issuePair(ctx, user)
}

func (a *authService) resolveRoles(ctx context.Context, names []string) ([]model.Role, error) {
	if len(names) == 0 {
		role, err := a.roleRepo.GetRoleByName(ctx, model.RoleUser)
		if err != nil {
			return nil, customErrors.WrapInternal(err, "resolve default role")
		}
		return []model.Role{role}, nil
	}

	roles, err := a.roleRepo.GetRolesByNames(ctx, names)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "resolve roles")
	}
	if len(roles) != len(names) {
		return nil, customErrors.NewInvalidArgument("unknown role")
	}
	return roles, nil
}

func (a *authService) Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	// Consume both rotates and fences: of two concurrent refreshes with
	// the same value only one reaches this point with a row.
	row, err := a.tokenRepo.Consume(ctx, dto.RefreshToken)
	if errors.Is(err, customErrors.ErrNotFound) || errors.Is(err, customErrors.ErrInvalidToken) {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	if row.Expired(time.Now()) {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	return a.issuePair(ctx, row.User)
}

func (a *authService) Logout(ctx context.Context, dto dto.LogoutDTO) error {
	// Idempotent by contract: revoking an unknown or already revoked
	// token still reports success so logout leaks no validity signal.
	if dto.RefreshToken == "" {
		return nil
	}
	if err := a.tokenRepo.Revoke(ctx, dto.RefreshToken); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

func (a *authService) LogoutAll(ctx context.Context, username string) error {
	user, err := a.userRepo.GetUserByUsername(ctx, username)
	if errors.Is(err, customErrors.ErrNotFound) {
		// A valid access token for a since-deleted user leaves nothing
		// to revoke.
		return nil
	}
	if err != nil {
		return customErrors.WrapInternal(err, "LogoutAll")
	}
	if err := a.tokenRepo.RevokeAll(ctx, user.ID); err != nil {
		return customErrors.WrapInternal(err, "LogoutAll")
	}
	return nil
}

func (a *authService) Validate(raw string, now time.Time) (token.Claims, error) {
	return a.codec.Verify(raw, now)
}

func (a *authService) issuePair(ctx context.Context, user model.User) (model.TokenPair, error) {
	roleNames := user.RoleNames()

	accessToken, err := a.codec.Issue(user.Username, roleNames, time.Now())
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue access token")
	}

	refreshToken, err := a.tokenRepo.Create(ctx, user, a.cfg.RefreshTokenTTL)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue refresh token")
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(a.codec.TTL().Seconds()),
		Username:     user.Username,
		Roles:        roleNames,
		RefreshTTL:   a.cfg.RefreshTokenTTL,
	}, nil
}
