// Package server wires configuration, logging, storage and the HTTP surface
// together and runs them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/personauth/internal/logging"
	"github.com/dmitrijs2005/personauth/internal/server/auth"
	"github.com/dmitrijs2005/personauth/internal/server/config"
	"github.com/dmitrijs2005/personauth/internal/server/httpserver"
	"github.com/dmitrijs2005/personauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/personauth/internal/server/services"
	"golang.org/x/sync/errgroup"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	runners []runner
}

// NewApp connects to the database, applies migrations and builds the
// services and the HTTP server.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	persons := services.NewPersonService(db, rm)
	credentials := services.NewCredentialService(persons)

	srv := httpserver.NewHTTPServer(
		httpserver.Options{Address: c.EndpointAddrHTTP, AuthRequired: c.AuthRequired},
		logger,
		persons,
		credentials,
		auth.NewPasswordHasher(c.BcryptCost),
		auth.NewTokenIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration),
	)

	return &App{config: c, logger: logger, db: db, runners: []runner{srv}}, nil
}

// Run blocks until SIGINT/SIGTERM/SIGQUIT or until a runner fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range app.runners {
		r := r
		g.Go(func() error {
			return r.Run(ctx)
		})
	}

	err := g.Wait()

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "db close", "error", cerr)
		}
	}

	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
