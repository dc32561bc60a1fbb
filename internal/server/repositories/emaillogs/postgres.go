package emaillogs

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

const selectLog = `SELECT id, customer_id, user_id, email_type, subject, content, recipient_email,
		sent_at, status, error_message
	FROM email_logs`

type scanner interface {
	Scan(dest ...any) error
}

func scanLog(s scanner) (*models.EmailLog, error) {
	var (
		e          models.EmailLog
		customerID sql.NullInt64
		status     string
		errMsg     sql.NullString
	)
	err := s.Scan(&e.ID, &customerID, &e.UserID, &e.EmailType, &e.Subject, &e.Content, &e.RecipientEmail,
		&e.SentAt, &status, &errMsg)
	if err != nil {
		return nil, err
	}

	e.Status = models.EmailStatus(status)
	if customerID.Valid {
		e.CustomerID = &customerID.Int64
	}
	if errMsg.Valid {
		e.ErrorMessage = &errMsg.String
	}
	return &e, nil
}

func wrap(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.EmailLog) (*models.EmailLog, error) {
	query :=
		`INSERT INTO email_logs (customer_id, user_id, email_type, subject, content, recipient_email,
			sent_at, status, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		entry.CustomerID, entry.UserID, entry.EmailType, entry.Subject, entry.Content, entry.RecipientEmail,
		entry.SentAt, string(entry.Status), entry.ErrorMessage,
	).Scan(&entry.ID)
	if err != nil {
		return nil, wrap(err)
	}
	return entry, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.EmailLog, error) {
	e, err := scanLog(r.db.QueryRowContext(ctx, selectLog+` WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(err)
	}
	return e, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.EmailLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	result := []models.EmailLog{}
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, wrap(err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.EmailLog], error) {
	filter = filter.Normalize()

	where := ` WHERE ($1 = '' OR subject ILIKE '%' || $1 || '%' OR recipient_email ILIKE '%' || $1 || '%'
		OR email_type ILIKE '%' || $1 || '%')`

	page := &models.Page[models.EmailLog]{Page: filter.Page, PageSize: filter.PageSize}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM email_logs`+where, filter.Search).Scan(&page.TotalCount); err != nil {
		return nil, wrap(err)
	}

	items, err := r.query(ctx, selectLog+where+` ORDER BY sent_at DESC, id DESC LIMIT $2 OFFSET $3`,
		filter.Search, filter.PageSize, filter.Offset())
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.EmailLog, error) {
	return r.query(ctx, selectLog+` WHERE customer_id = $1 ORDER BY sent_at DESC, id DESC`, customerID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.EmailLog, error) {
	return r.query(ctx, selectLog+` ORDER BY sent_at DESC, id DESC`)
}

func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]models.EmailLog, error) {
	return r.query(ctx, selectLog+` ORDER BY sent_at DESC, id DESC LIMIT $1`, limit)
}

func (r *PostgresRepository) Stats(ctx context.Context) ([]models.EmailStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM email_logs GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	result := []models.EmailStat{}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, wrap(err)
		}
		result = append(result, models.EmailStat{Status: models.EmailStatus(status), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status models.EmailStatus, errorMessage *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE email_logs SET status = $2, error_message = $3 WHERE id = $1`,
		id, string(status), errorMessage)
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
