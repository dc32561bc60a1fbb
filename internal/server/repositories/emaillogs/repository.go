// Package emaillogs persists the log of emails handed to a mail transport.
// Entries are never deleted here; only their status changes.
package emaillogs

import (
	"context"

	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.EmailLog) (*models.EmailLog, error)
	GetByID(ctx context.Context, id int64) (*models.EmailLog, error)
	List(ctx context.Context, filter models.ListFilter) (*models.Page[models.EmailLog], error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.EmailLog, error)
	ListAll(ctx context.Context) ([]models.EmailLog, error)
	Recent(ctx context.Context, limit int) ([]models.EmailLog, error)
	Stats(ctx context.Context) ([]models.EmailStat, error)
	UpdateStatus(ctx context.Context, id int64, status models.EmailStatus, errorMessage *string) error
}
