// Package server wires the credkeeper server together: it opens the
// database, applies migrations, builds the auth service and runs the HTTP
// API and the gRPC health endpoint until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credkeeper/internal/server/rest"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/credkeeper/internal/server/grpc"
)

// runner is a server that blocks until ctx is cancelled.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	metrics     *metrics.Metrics
}

// openDB and newRepoManager are seams for tests.
var (
	openDB = func(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error) {
		return dbx.Open(ctx, "pgx", dsn, maxOpen)
	}
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DSN(), c.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	as, err := services.NewAuthService(db, rm, cryptox.NewBcryptHasher(c.BcryptCost), logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("auth service init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, authService: as}
	if c.MetricsEnabled {
		app.metrics = metrics.New()
		app.metrics.WatchDB(db)
	}
	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) servers() []runner {
	return []runner{
		rest.NewHTTPServer(app.config.HTTPAddr, app.logger, app.authService, app.metrics, app.config.ResetTokenSecret, app.config.ShutdownTimeout),
		gs.NewHealthServer(app.config.GRPCAddr, app.logger, app.db, app.config.HealthInterval),
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails. The database pool is closed before Run returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	if app.config.ResetTokenSecret == "" {
		app.logger.Warn(ctx, "RESET_TOKEN_SECRET is empty: /reset-password accepts requests without proof of identity")
	}

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, s := range app.servers() {
		wg.Add(1)
		go func(s runner) {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "error", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancelFunc()
			}
		}(s)
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return firstErr
}
