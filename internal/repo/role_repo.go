package repo

import (
	"context"

	"github.com/videoanalytics/api-gateway/internal/auth/model"
)

type RoleRepo interface {
	GetRoleByName(ctx context.Context, name string) (model.Role, error)

	// GetRolesByNames returns only the roles that exist; a caller that
	// requires all of them must compare lengths.
	GetRolesByNames(ctx context.Context, names []string) ([]model.Role, error)
}
