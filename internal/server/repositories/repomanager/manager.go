package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophcrm/internal/dbx"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/customers"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/emaillogs"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/roles"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/templates"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a database handle, so that
// services can run several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Customers(db dbx.DBTX) customers.Repository
	EmailLogs(db dbx.DBTX) emaillogs.Repository
	Templates(db dbx.DBTX) templates.Repository
}
