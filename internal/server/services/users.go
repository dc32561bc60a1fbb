package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/auth"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
)

// UserService administers operator accounts.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bcryptCost  int
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, bcryptCost: cfg.BcryptCost, logger: logger.With("module", "user_service")}
}

// Create stores a new active user with a bcrypt hash of password.
// Username and email must be unique.
func (s *UserService) Create(ctx context.Context, u *models.User, password string) (*models.User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Roles(s.db).GetByID(ctx, u.RoleID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: unknown role", common.ErrorValidation)
		}
		return nil, repoError(ctx, s.logger, "load role", err, "role_id", u.RoleID)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "hash password", "username", u.Username, "error", err)
		return nil, common.ErrorInternal
	}
	u.PasswordHash = hash
	u.IsActive = true
	u.FailedLoginAttempts = 0
	u.LockoutEnd = nil

	created, err := s.repomanager.Users(s.db).Create(ctx, u)
	if err != nil {
		return nil, repoError(ctx, s.logger, "create user", err, "username", u.Username)
	}
	s.logger.Info(ctx, "user created", "user_id", created.ID, "username", created.Username)
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, repoError(ctx, s.logger, "get user", err, "user_id", id)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.User], error) {
	page, err := s.repomanager.Users(s.db).List(ctx, filter.Normalize())
	if err != nil {
		return nil, repoError(ctx, s.logger, "list users", err)
	}
	return page, nil
}

// Update changes profile fields and role. Credentials are left alone.
func (s *UserService) Update(ctx context.Context, u *models.User) error {
	if err := validateUser(u); err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).Update(ctx, u); err != nil {
		return repoError(ctx, s.logger, "update user", err, "user_id", u.ID)
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Users(s.db).SoftDelete(ctx, id); err != nil {
		return repoError(ctx, s.logger, "delete user", err, "user_id", id)
	}
	s.logger.Info(ctx, "user deactivated", "user_id", id)
	return nil
}

func validateUser(u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	return nil
}

// validatePassword rejects passwords bcrypt cannot hash.
func validatePassword(pw string) error {
	if pw == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if len(pw) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", common.ErrorValidation, auth.MaxPasswordBytes)
	}
	return nil
}
