// Package users persists CRM operator accounts and their credential state.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByUsernameForUpdate locks the user row until the surrounding
	// transaction ends.
	GetByUsernameForUpdate(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, filter models.ListFilter) (*models.Page[models.User], error)
	Update(ctx context.Context, user *models.User) error
	UpdateLoginState(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SoftDelete(ctx context.Context, id int64) error
}
