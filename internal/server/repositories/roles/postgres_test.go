package roles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
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

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+roles\s*\(name,\s*description\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at$`).
		WithArgs("Manager", "Manages customers").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), time.Now()))

	got, err := repo.Create(context.Background(), &models.Role{Name: "Manager", Description: "Manages customers"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+roles`).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Role{Name: "Admin"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGetByName(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*name,\s*description,\s*created_at\s+FROM\s+roles\s+WHERE\s+name\s*=\s*\$1$`).
		WithArgs("Admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow(int64(1), "Admin", "Full access", time.Now()))

	got, err := repo.GetByName(context.Background(), "Admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT.+FROM\s+roles\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT.+FROM\s+roles\s+ORDER\s+BY\s+name$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow(int64(1), "Admin", "", now).
			AddRow(int64(3), "User", "", now))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "User", got[1].Name)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE\s+FROM\s+roles\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE\s+FROM\s+roles`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^DELETE\s+FROM\s+roles`).
		WithArgs(int64(5)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectExec(`^DELETE\s+FROM\s+roles`).
		WithArgs(int64(6)).
		WillReturnError(errors.New("conn reset"))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), common.ErrorNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), common.ErrorInUse)
	assert.ErrorContains(t, repo.Delete(context.Background(), 6), "db error")
}
