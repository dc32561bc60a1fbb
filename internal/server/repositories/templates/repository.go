// Package templates persists reusable outreach email templates.
package templates

import (
	"context"

	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.EmailTemplate, error)
	GetByID(ctx context.Context, id string) (*models.EmailTemplate, error)
	// Save inserts the template or replaces the one with the same id.
	Save(ctx context.Context, t *models.EmailTemplate) (*models.EmailTemplate, error)
	Delete(ctx context.Context, id string) error
}
