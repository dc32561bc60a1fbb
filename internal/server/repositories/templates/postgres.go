package templates

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

const selectTemplate = `SELECT id, name, subject, content, created_at, updated_at FROM email_templates`

func wrap(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.EmailTemplate, error) {
	rows, err := r.db.QueryContext(ctx, selectTemplate+` ORDER BY name, id`)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	result := []models.EmailTemplate{}
	for rows.Next() {
		var t models.EmailTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, wrap(err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	t := &models.EmailTemplate{}
	err := r.db.QueryRowContext(ctx, selectTemplate+` WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Subject, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, wrap(err)
	}
	return t, nil
}

func (r *PostgresRepository) Save(ctx context.Context, t *models.EmailTemplate) (*models.EmailTemplate, error) {
	query :=
		`INSERT INTO email_templates (id, name, subject, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, subject = EXCLUDED.subject, content = EXCLUDED.content, updated_at = now()
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, t.ID, t.Name, t.Subject, t.Content).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, wrap(err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
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
