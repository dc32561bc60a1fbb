package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
)

// CustomerService manages customer records. Deleted customers are only
// deactivated, so their email history survives.
type CustomerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCustomerService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *CustomerService {
	return &CustomerService{db: db, repomanager: m, logger: logger.With("module", "customer_service")}
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := s.repomanager.Customers(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, repoError(ctx, s.logger, "get customer", err, "customer_id", id)
	}
	return c, nil
}

// List returns one page of active customers matching filter.Search.
func (s *CustomerService) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.Customer], error) {
	page, err := s.repomanager.Customers(s.db).List(ctx, filter.Normalize())
	if err != nil {
		return nil, repoError(ctx, s.logger, "list customers", err)
	}
	return page, nil
}

func (s *CustomerService) Create(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if err := validateCustomer(c); err != nil {
		return nil, err
	}
	c.IsActive = true

	created, err := s.repomanager.Customers(s.db).Create(ctx, c)
	if err != nil {
		return nil, repoError(ctx, s.logger, "create customer", err, "company", c.CompanyName)
	}
	s.logger.Info(ctx, "customer created", "customer_id", created.ID)
	return created, nil
}

func (s *CustomerService) Update(ctx context.Context, c *models.Customer) error {
	if err := validateCustomer(c); err != nil {
		return err
	}
	if err := s.repomanager.Customers(s.db).Update(ctx, c); err != nil {
		return repoError(ctx, s.logger, "update customer", err, "customer_id", c.ID)
	}
	return nil
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Customers(s.db).SoftDelete(ctx, id); err != nil {
		return repoError(ctx, s.logger, "delete customer", err, "customer_id", id)
	}
	s.logger.Info(ctx, "customer deactivated", "customer_id", id)
	return nil
}

// History returns the emails logged for the customer, newest first.
func (s *CustomerService) History(ctx context.Context, id int64) ([]models.EmailLog, error) {
	logs, err := s.repomanager.EmailLogs(s.db).ListByCustomer(ctx, id)
	if err != nil {
		return nil, repoError(ctx, s.logger, "customer history", err, "customer_id", id)
	}
	return logs, nil
}

func validateCustomer(c *models.Customer) error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	if c.CompanyName == "" {
		return fmt.Errorf("%w: company name is required", common.ErrorValidation)
	}
	if c.ContactEmail != "" {
		if _, err := mail.ParseAddress(c.ContactEmail); err != nil {
			return fmt.Errorf("%w: invalid contact email", common.ErrorValidation)
		}
	}
	return nil
}
