package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/dbx"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUser = `SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
		u.role_id, r.name, u.is_active, u.failed_login_attempts, u.lockout_end, u.last_login,
		u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		u          models.User
		lockoutEnd sql.NullTime
		lastLogin  sql.NullTime
	)

	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.RoleID, &u.RoleName, &u.IsActive, &u.FailedLoginAttempts, &lockoutEnd, &lastLogin,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lockoutEnd.Valid {
		u.LockoutEnd = &lockoutEnd.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

func wrap(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, first_name, last_name, password_hash, role_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.RoleID, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, wrap(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, wrap(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.username = $1`, username))
	if err != nil {
		return nil, wrap(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByUsernameForUpdate(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.username = $1 FOR UPDATE OF u`, username))
	if err != nil {
		return nil, wrap(err)
	}
	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.User], error) {
	filter = filter.Normalize()

	where := ` WHERE u.is_active AND ($1 = '' OR u.username ILIKE '%' || $1 || '%' OR u.email ILIKE '%' || $1 || '%'
		OR u.first_name ILIKE '%' || $1 || '%' OR u.last_name ILIKE '%' || $1 || '%')`

	page := &models.Page[models.User]{Page: filter.Page, PageSize: filter.PageSize, Items: []models.User{}}

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u`+where, filter.Search).Scan(&page.TotalCount)
	if err != nil {
		return nil, wrap(err)
	}

	rows, err := r.db.QueryContext(ctx, selectUser+where+` ORDER BY u.username LIMIT $2 OFFSET $3`,
		filter.Search, filter.PageSize, filter.Offset())
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap(err)
		}
		page.Items = append(page.Items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}

	return page, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET username = $2, email = $3, first_name = $4, last_name = $5, role_id = $6,
		 is_active = $7, updated_at = now()
		 WHERE id = $1`

	return r.exec(ctx, query, user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.RoleID, user.IsActive)
}

func (r *PostgresRepository) UpdateLoginState(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET failed_login_attempts = $2, lockout_end = $3, last_login = $4
		 WHERE id = $1`

	return r.exec(ctx, query, user.ID, user.FailedLoginAttempts, user.LockoutEnd, user.LastLogin)
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users SET is_active = false, updated_at = now() WHERE id = $1`, id)
}
