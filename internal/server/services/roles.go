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
)

type RoleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewRoleService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *RoleService {
	return &RoleService{db: db, repomanager: m, logger: logger.With("module", "role_service")}
}

func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.repomanager.Roles(s.db).List(ctx)
	if err != nil {
		return nil, repoError(ctx, s.logger, "list roles", err)
	}
	return roles, nil
}

func (s *RoleService) Get(ctx context.Context, id int64) (*models.Role, error) {
	r, err := s.repomanager.Roles(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, repoError(ctx, s.logger, "get role", err, "role_id", id)
	}
	return r, nil
}

func (s *RoleService) GetByName(ctx context.Context, name string) (*models.Role, error) {
	r, err := s.repomanager.Roles(s.db).GetByName(ctx, name)
	if err != nil {
		return nil, repoError(ctx, s.logger, "get role", err, "name", name)
	}
	return r, nil
}

func (s *RoleService) Create(ctx context.Context, name, description string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", common.ErrorValidation)
	}
	r, err := s.repomanager.Roles(s.db).Create(ctx, &models.Role{Name: name, Description: description})
	if err != nil {
		return nil, repoError(ctx, s.logger, "create role", err, "name", name)
	}
	return r, nil
}

// Delete removes the role for good. It returns common.ErrorInUse while users
// still hold the role.
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Roles(s.db).Delete(ctx, id); err != nil {
		return repoError(ctx, s.logger, "delete role", err, "role_id", id)
	}
	return nil
}
