package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	customErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
	"github.com/videoanalytics/api-gateway/internal/auth/model"
)

type RoleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

func (p *RoleRepo) GetRoleByName(ctx context.Context, name string) (model.Role, error) {
	var r model.Role
	res := p.db.WithContext(ctx).Where("name = ?", name).First(&r)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Role{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Role{}, customErrors.WrapInternal(err, "GetRoleByName")
	}
	return r, nil
}

func (p *RoleRepo) GetRolesByNames(ctx context.Context, names []string) ([]model.Role, error) {
	var roles []model.Role
	res := p.db.WithContext(ctx).Where("name IN ?", names).Find(&roles)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "GetRolesByNames")
	}
	return roles, nil
}
