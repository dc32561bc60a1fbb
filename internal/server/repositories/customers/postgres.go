package customers

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

const selectCustomer = `SELECT id, company_name, contact_first_name, contact_last_name, contact_email,
		contact_phone, address, city, state, country, postal_code, industry, is_active, created_at, updated_at
	FROM customers`

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (*models.Customer, error) {
	var c models.Customer
	err := s.Scan(&c.ID, &c.CompanyName, &c.ContactFirstName, &c.ContactLastName, &c.ContactEmail,
		&c.ContactPhone, &c.Address, &c.City, &c.State, &c.Country, &c.PostalCode, &c.Industry,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func wrap(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	query :=
		`INSERT INTO customers (company_name, contact_first_name, contact_last_name, contact_email,
			contact_phone, address, city, state, country, postal_code, industry, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.CompanyName, c.ContactFirstName, c.ContactLastName, c.ContactEmail, c.ContactPhone,
		c.Address, c.City, c.State, c.Country, c.PostalCode, c.Industry, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrap(err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, selectCustomer+` WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.Customer], error) {
	filter = filter.Normalize()

	where := ` WHERE is_active AND ($1 = '' OR company_name ILIKE '%' || $1 || '%'
		OR contact_first_name ILIKE '%' || $1 || '%' OR contact_last_name ILIKE '%' || $1 || '%'
		OR contact_email ILIKE '%' || $1 || '%')`

	page := &models.Page[models.Customer]{Page: filter.Page, PageSize: filter.PageSize, Items: []models.Customer{}}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+where, filter.Search).Scan(&page.TotalCount); err != nil {
		return nil, wrap(err)
	}

	rows, err := r.db.QueryContext(ctx, selectCustomer+where+` ORDER BY company_name, id LIMIT $2 OFFSET $3`,
		filter.Search, filter.PageSize, filter.Offset())
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, wrap(err)
		}
		page.Items = append(page.Items, *c)
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

func (r *PostgresRepository) Update(ctx context.Context, c *models.Customer) error {
	query :=
		`UPDATE customers SET company_name = $2, contact_first_name = $3, contact_last_name = $4,
			contact_email = $5, contact_phone = $6, address = $7, city = $8, state = $9, country = $10,
			postal_code = $11, industry = $12, is_active = $13, updated_at = now()
		 WHERE id = $1`

	return r.exec(ctx, query, c.ID, c.CompanyName, c.ContactFirstName, c.ContactLastName, c.ContactEmail,
		c.ContactPhone, c.Address, c.City, c.State, c.Country, c.PostalCode, c.Industry, c.IsActive)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE customers SET is_active = false, updated_at = now() WHERE id = $1`, id)
}
