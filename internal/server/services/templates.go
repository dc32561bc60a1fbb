package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// newTemplateID is a seam for tests.
var newTemplateID = func() string { return uuid.NewString() }

// TemplateService stores reusable outreach templates.
type TemplateService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTemplateService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TemplateService {
	return &TemplateService{db: db, repomanager: m, logger: logger.With("module", "template_service")}
}

func (s *TemplateService) List(ctx context.Context) ([]models.EmailTemplate, error) {
	ts, err := s.repomanager.Templates(s.db).List(ctx)
	if err != nil {
		return nil, repoError(ctx, s.logger, "list templates", err)
	}
	return ts, nil
}

func (s *TemplateService) Get(ctx context.Context, id string) (*models.EmailTemplate, error) {
	t, err := s.repomanager.Templates(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, repoError(ctx, s.logger, "get template", err, "template_id", id)
	}
	return t, nil
}

// Save creates or replaces a template. A template without an id gets a new
// one.
func (s *TemplateService) Save(ctx context.Context, t *models.EmailTemplate) (*models.EmailTemplate, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return nil, fmt.Errorf("%w: template name is required", common.ErrorValidation)
	}
	if t.Content == "" {
		return nil, fmt.Errorf("%w: template content is required", common.ErrorValidation)
	}
	if t.ID == "" {
		t.ID = newTemplateID()
	}

	saved, err := s.repomanager.Templates(s.db).Save(ctx, t)
	if err != nil {
		return nil, repoError(ctx, s.logger, "save template", err, "template_id", t.ID)
	}
	return saved, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Templates(s.db).Delete(ctx, id); err != nil {
		return repoError(ctx, s.logger, "delete template", err, "template_id", id)
	}
	return nil
}
