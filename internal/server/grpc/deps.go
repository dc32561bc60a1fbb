package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophcrm/internal/server/auth"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/services"
)

// The interfaces below are the slices of the service layer the transport
// calls. The services package types satisfy them.

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*services.LoginResult, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	Logout(ctx context.Context, userID int64)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
}

type CustomerService interface {
	Get(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, filter models.ListFilter) (*models.Page[models.Customer], error)
	Create(ctx context.Context, c *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id int64) error
	History(ctx context.Context, id int64) ([]models.EmailLog, error)
}

type OutreachService interface {
	GeneratePreviewForCustomers(ctx context.Context, ids []int64, template string) ([]models.GeneratedEmail, error)
	SendBatch(ctx context.Context, senderID int64, previews []models.GeneratedEmail) *models.BatchResult
	UpdateStatus(ctx context.Context, logID int64, status models.EmailStatus, errorMessage string) error
}

type EmailLogService interface {
	List(ctx context.Context, filter models.ListFilter) (*models.Page[models.EmailLog], error)
	Recent(ctx context.Context, limit int) ([]models.EmailLog, error)
	Stats(ctx context.Context) ([]models.EmailStat, error)
}

type ExportService interface {
	EmailLogs(ctx context.Context, format services.ExportFormat) (*services.Export, error)
	Archive(ctx context.Context, format services.ExportFormat) (*services.ExportArchive, error)
}

type TemplateService interface {
	List(ctx context.Context) ([]models.EmailTemplate, error)
	Get(ctx context.Context, id string) (*models.EmailTemplate, error)
	Save(ctx context.Context, t *models.EmailTemplate) (*models.EmailTemplate, error)
	Delete(ctx context.Context, id string) error
}

type RoleService interface {
	List(ctx context.Context) ([]models.Role, error)
	Create(ctx context.Context, name, description string) (*models.Role, error)
	Delete(ctx context.Context, id int64) error
}

type UserService interface {
	List(ctx context.Context, filter models.ListFilter) (*models.Page[models.User], error)
	Create(ctx context.Context, u *models.User, password string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// Deps wires the server to the service layer.
type Deps struct {
	Tokens    TokenParser
	Auth      AuthService
	Customers CustomerService
	Outreach  OutreachService
	EmailLogs EmailLogService
	Export    ExportService
	Templates TemplateService
	Roles     RoleService
	Users     UserService
}
