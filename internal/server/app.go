// Package server initializes and runs the CRM server: it opens the database,
// applies migrations, wires the services and serves gRPC plus a metrics
// endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"github.com/dmitrijs2005/gophcrm/internal/server/mailer"
	"github.com/dmitrijs2005/gophcrm/internal/server/metrics"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophcrm/internal/server/services"
	"github.com/dmitrijs2005/gophcrm/internal/server/textgen"

	gs "github.com/dmitrijs2005/gophcrm/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

// seams for tests
var (
	openDB     = repomanager.OpenDB
	newManager = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
	newSender  = mailer.New
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	sender  mailer.Sender
	grpc    *gs.GRPCServer
	metrics *http.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sender, err := newSender(c, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	authService := services.NewAuthService(db, rm, c, logger)
	templateService := services.NewTemplateService(db, rm, logger)

	deps := gs.Deps{
		Tokens:    authService.Tokens(),
		Auth:      authService,
		Customers: services.NewCustomerService(db, rm, logger),
		Outreach:  services.NewOutreachService(db, rm, c, textgen.New(c), sender, logger),
		EmailLogs: services.NewEmailLogService(db, rm, logger),
		Export:    services.NewExportService(db, rm, c, logger),
		Templates: templateService,
		Roles:     services.NewRoleService(db, rm, logger),
		Users:     services.NewUserService(db, rm, c, logger),
	}

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		sender: sender,
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, deps),
	}
	if c.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		app.metrics = &http.Server{Addr: c.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.metrics.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn(ctx, "metrics server shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.metrics.Addr)
	if err := app.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a shutdown signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.metrics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if c, ok := app.sender.(io.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Error(ctx, "close mailer", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "close db", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
