package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	customErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
	"github.com/videoanalytics/api-gateway/internal/auth/model"
)

const uniqueViolation = "23505"

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (p *UserRepo) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	res := p.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
		return uuid.Nil, customErrors.WrapInternal(err, "CreateUser")
	}
	return user.ID, nil
}

func (p *UserRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return p.getUser(ctx, "username = ?", username, "GetUserByUsername")
}

func (p *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return p.getUser(ctx, "email = ?", email, "GetUserByEmail")
}

func (p *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return p.getUser(ctx, "id = ?", id, "GetUserByID")
}

func (p *UserRepo) getUser(ctx context.Context, query string, arg interface{}, op string) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Preload("Roles").Where(query, arg).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, op)
	}
	return u, nil
}

// isUniqueViolation covers the pgx/v5 driver error the gorm postgres
// dialector surfaces, plus gorm's translated sentinel for other dialects.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
