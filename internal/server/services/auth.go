// Package services contains server-side business logic. This file implements
// AuthService: password login with failed-attempt counting and timed lockout,
// password changes and session token issuance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/dbx"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/auth"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"github.com/dmitrijs2005/gophcrm/internal/server/metrics"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// AuthService verifies credentials and tracks lockout state per user.
//
// A user is locked for lockoutDuration once maxAttempts consecutive wrong
// passwords have been entered. The lock is evaluated lazily on the next
// attempt; a successful login resets the counter.
type AuthService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	tokens          *auth.TokenIssuer
	maxAttempts     int
	lockoutDuration time.Duration
	bcryptCost      int
	logger          logging.Logger
	now             func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:              db,
		repomanager:     m,
		tokens:          auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.TokenIssuer, cfg.TokenAudience, cfg.SessionTokenValidityDuration),
		maxAttempts:     cfg.MaxLoginAttempts,
		lockoutDuration: cfg.LockoutDuration,
		bcryptCost:      cfg.BcryptCost,
		logger:          logger.With("module", "auth_service"),
		now:             time.Now,
	}
}

// Tokens returns the issuer used to sign session tokens, so the transport can
// verify them.
func (s *AuthService) Tokens() *auth.TokenIssuer {
	return s.tokens
}

// Authenticate checks username and password. It returns
// common.ErrInvalidCredentials for an unknown user or a wrong password and
// common.ErrAccountLocked while a lockout is in force, whatever the password.
//
// The user row is locked for the duration of the check, so concurrent logins
// for one user see each other's counter updates.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		s.countLogin(ctx, username, metrics.LoginInvalid)
		return nil, common.ErrInvalidCredentials
	}

	now := s.now()

	var (
		outcome string
		locked  bool
		result  *LoginResult
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByUsernameForUpdate(ctx, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				outcome = metrics.LoginInvalid
				return nil
			}
			return err
		}

		if !user.IsActive {
			outcome = metrics.LoginInvalid
			return nil
		}

		if user.IsLockedOut(now) {
			outcome = metrics.LoginLocked
			return nil
		}

		if !auth.VerifyPassword(user.PasswordHash, password) {
			user.FailedLoginAttempts++
			if user.FailedLoginAttempts >= s.maxAttempts {
				end := now.Add(s.lockoutDuration)
				user.LockoutEnd = &end
				locked = true
			}
			outcome = metrics.LoginInvalid
			// the counter must be committed even though the login fails
			return repo.UpdateLoginState(ctx, user)
		}

		user.FailedLoginAttempts = 0
		user.LockoutEnd = nil
		user.LastLogin = &now
		if err := repo.UpdateLoginState(ctx, user); err != nil {
			return err
		}

		token, expiresAt, err := s.tokens.Issue(auth.Identity{
			UserID:     user.ID,
			Username:   user.Username,
			Email:      user.Email,
			GivenName:  user.FirstName,
			FamilyName: user.LastName,
			Role:       user.RoleName,
		}, now)
		if err != nil {
			return err
		}

		outcome = metrics.LoginSuccess
		result = &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "authentication failed", "username", username, "error", err)
		s.countLogin(ctx, username, metrics.LoginError)
		return nil, common.ErrorInternal
	}

	s.countLogin(ctx, username, outcome)
	if locked {
		metrics.AccountLockouts.Inc()
		s.logger.Warn(ctx, "account locked", "username", username, "until", now.Add(s.lockoutDuration))
	}

	switch outcome {
	case metrics.LoginSuccess:
		return result, nil
	case metrics.LoginLocked:
		return nil, common.ErrAccountLocked
	default:
		return nil, common.ErrInvalidCredentials
	}
}

func (s *AuthService) countLogin(ctx context.Context, username, outcome string) {
	metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	if outcome == metrics.LoginSuccess {
		s.logger.Info(ctx, "login succeeded", "username", username)
		return
	}
	s.logger.Warn(ctx, "login rejected", "username", username, "outcome", outcome)
}

// ChangePassword replaces the password of userID after verifying current.
// It returns common.ErrPasswordMismatch when the user is unknown or current
// does not match.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrPasswordMismatch
		}
		s.logger.Error(ctx, "load user", "user_id", userID, "error", err)
		return common.ErrorInternal
	}

	if !user.IsActive || !auth.VerifyPassword(user.PasswordHash, current) {
		return common.ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "hash password", "user_id", userID, "error", err)
		return common.ErrorInternal
	}

	if err := repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		s.logger.Error(ctx, "update password", "user_id", userID, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// Logout only records the event; issued tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID int64) {
	s.logger.Info(ctx, "logout", "user_id", userID)
}

// CurrentUser returns the active user with the given id.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "load user", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrorNotFound
	}
	return user, nil
}
