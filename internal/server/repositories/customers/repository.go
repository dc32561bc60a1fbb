// Package customers persists CRM customer records. Deletion only clears
// the active flag.
package customers

import (
	"context"

	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, filter models.ListFilter) (*models.Page[models.Customer], error)
	Update(ctx context.Context, c *models.Customer) error
	SoftDelete(ctx context.Context, id int64) error
}
