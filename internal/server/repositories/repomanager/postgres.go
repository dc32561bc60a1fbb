// Package repomanager provides the PostgreSQL RepositoryManager, wiring the
// repository constructors together with goose schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophcrm/internal/dbx"
	"github.com/dmitrijs2005/gophcrm/internal/server/migrations"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/customers"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/emaillogs"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/roles"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/templates"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Roles(db dbx.DBTX) roles.Repository {
	return roles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Customers(db dbx.DBTX) customers.Repository {
	return customers.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) EmailLogs(db dbx.DBTX) emaillogs.Repository {
	return emaillogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Templates(db dbx.DBTX) templates.Repository {
	return templates.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// OpenDB opens a pgx-backed *sql.DB and checks connectivity.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
