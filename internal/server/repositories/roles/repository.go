// Package roles persists user roles. Roles are hard-deleted.
package roles

import (
	"context"

	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, role *models.Role) (*models.Role, error)
	GetByID(ctx context.Context, id int64) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	Delete(ctx context.Context, id int64) error
}
