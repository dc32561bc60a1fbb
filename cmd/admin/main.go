// Command admin creates the first administrator of a gophcrm installation.
// It reads the server configuration, applies pending migrations and then
// prompts for the account details.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophcrm/internal/admin"
	"github.com/dmitrijs2005/gophcrm/internal/buildinfo"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophcrm/internal/server/services"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations error: %v", err)
	}

	b := admin.NewBootstrap(
		services.NewRoleService(db, rm, logger),
		services.NewUserService(db, rm, cfg, logger),
		os.Stdin, os.Stdout, logger,
	)
	if _, err := b.Run(ctx); err != nil {
		log.Printf("%v", err)
		return
	}
}
