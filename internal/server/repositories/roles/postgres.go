package roles

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

func wrap(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return common.ErrorAlreadyExists
	case dbx.IsForeignKeyViolation(err):
		return common.ErrorInUse
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) Create(ctx context.Context, role *models.Role) (*models.Role, error) {
	query :=
		`INSERT INTO roles (name, description)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, role.Name, role.Description).Scan(&role.ID, &role.CreatedAt); err != nil {
		return nil, wrap(err)
	}
	return role, nil
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM roles WHERE `+where, arg).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		return nil, wrap(err)
	}
	return role, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r.get(ctx, `name = $1`, name)
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	result := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, wrap(err)
		}
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
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
