package customers

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var customerColumns = []string{"id", "company_name", "contact_first_name", "contact_last_name", "contact_email",
	"contact_phone", "address", "city", "state", "country", "postal_code", "industry", "is_active",
	"created_at", "updated_at"}

func acmeRow(rows *sqlmock.Rows, id int64) *sqlmock.Rows {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "Acme", "Alice", "Smith", "alice@acme.com", "555-0100", "1 Main St",
		"Springfield", "IL", "US", "62701", "Healthcare", true, now, now)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+customers\s*\(company_name,.+VALUES\s*\(\$1,.+\$12\)\s*RETURNING\s+id,\s*created_at,\s*updated_at$`).
		WithArgs("Acme", "Alice", "Smith", "alice@acme.com", "", "", "", "", "", "", "", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))

	got, err := repo.Create(context.Background(), &models.Customer{CompanyName: "Acme", ContactFirstName: "Alice",
		ContactLastName: "Smith", ContactEmail: "alice@acme.com", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*company_name,.+FROM\s+customers\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(5)).
		WillReturnRows(acmeRow(sqlmock.NewRows(customerColumns), 5))

	got, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", got.ContactName())
	assert.Equal(t, "Healthcare", got.Industry)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT.+FROM\s+customers\s+WHERE\s+id`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+customers\s+WHERE\s+is_active`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	rows := sqlmock.NewRows(customerColumns)
	acmeRow(rows, 1)
	acmeRow(rows, 2)
	mock.ExpectQuery(`(?s)^SELECT\s+id,.+ORDER\s+BY\s+company_name,\s*id\s+LIMIT\s+\$2\s+OFFSET\s+\$3$`).
		WithArgs("", models.DefaultPageSize, 0).
		WillReturnRows(rows)

	page, err := repo.List(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Items[1].ID)
}

func TestList_CountError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+COUNT`).WillReturnError(errors.New("timeout"))

	_, err := repo.List(context.Background(), models.ListFilter{Search: "acme"})
	assert.ErrorContains(t, err, "db error: timeout")
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^UPDATE\s+customers\s+SET\s+company_name\s*=\s*\$2,.+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(5), "Acme Ltd", "Alice", "", "", "", "", "", "", "", "", "", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.Customer{ID: 5, CompanyName: "Acme Ltd", ContactFirstName: "Alice", IsActive: true})
	require.NoError(t, err)
}

func TestSoftDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^UPDATE\s+customers\s+SET\s+is_active\s*=\s*false`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^UPDATE\s+customers\s+SET\s+is_active\s*=\s*false`).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SoftDelete(context.Background(), 5))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 6), common.ErrorNotFound)
}
