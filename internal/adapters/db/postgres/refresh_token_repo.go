package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
	"github.com/videoanalytics/api-gateway/internal/auth/model"
)

type RefreshTokenRepo struct {
	db *gorm.DB
}

func NewRefreshTokenRepo(db *gorm.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (p *RefreshTokenRepo) Create(ctx context.Context, user model.User, ttl time.Duration) (string, error) {
	// A v4 UUID collision is negligible, but the unique index is the
	// arbiter: on a violation we retry once with a fresh value instead of
	// overwriting somebody else's row.
	for attempt := 0; attempt < 2; attempt++ {
		row := model.RefreshToken{
			Token:      uuid.NewString(),
			UserID:     user.ID,
			ExpiryDate: time.Now().Add(ttl),
		}
		res := p.db.WithContext(ctx).Create(&row)
		if err := res.Error; err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return "", customErrors.WrapInternal(err, "Create refresh token")
		}
		return row.Token, nil
	}
	return "", customErrors.WrapInternal(errors.New("token value collision"), "Create refresh token")
}

func (p *RefreshTokenRepo) Find(ctx context.Context, tokenValue string) (model.RefreshToken, error) {
	var row model.RefreshToken
	res := p.db.WithContext(ctx).Preload("User.Roles").Where("token = ?", tokenValue).First(&row)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.RefreshToken{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.RefreshToken{}, customErrors.WrapInternal(err, "Find refresh token")
	}
	return row, nil
}

// Consume is the rotation primitive. The conditional UPDATE serializes a
// concurrent double-use of the same value: exactly one caller flips
// revoked false->true, the other sees zero affected rows and fails with
// ErrInvalidToken rather than silently reissuing from stale state.
func (p *RefreshTokenRepo) Consume(ctx context.Context, tokenValue string) (model.RefreshToken, error) {
	res := p.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("token = ? AND revoked = ?", tokenValue, false).
		Update("revoked", true)
	if err := res.Error; err != nil {
		return model.RefreshToken{}, customErrors.WrapInternal(err, "Consume refresh token")
	}
	if res.RowsAffected == 0 {
		return model.RefreshToken{}, customErrors.ErrInvalidToken
	}
	return p.Find(ctx, tokenValue)
}

func (p *RefreshTokenRepo) Revoke(ctx context.Context, tokenValue string) error {
	res := p.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("token = ?", tokenValue).
		Update("revoked", true)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "Revoke refresh token")
	}
	// Zero affected rows means the token never existed or was already
	// revoked; both are success so logout leaks no validity information.
	return nil
}

func (p *RefreshTokenRepo) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "RevokeAll refresh tokens")
	}
	return nil
}

func (p *RefreshTokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := p.db.WithContext(ctx).
		Where("expiry_date < ?", now).
		Delete(&model.RefreshToken{})
	if err := res.Error; err != nil {
		return 0, customErrors.WrapInternal(err, "PurgeExpired refresh tokens")
	}
	return res.RowsAffected, nil
}
