package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/data/db"
	"github.com/yungbote/armory-backend/internal/data/seed"
	"github.com/yungbote/armory-backend/internal/http"
	"github.com/yungbote/armory-backend/internal/observability"
	"github.com/yungbote/armory-backend/internal/platform/dbctx"
	"github.com/yungbote/armory-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(LogModeFromEnv())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	theDB := pg.DB()
	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(theDB); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
		if err := db.EnsureArmoryIndexes(theDB); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("postgres constraints: %w", err)
		}
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.New(log, theDB)
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, metrics)

	sqlDB, err := theDB.DB()
	if err != nil {
		clients.Close(ctx)
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres sql handle: %w", err)
	}
	handlerset := wireHandlers(log, sqlDB, serviceset)
	server := wireServer(log, cfg, handlerset, metrics)

	a := &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
	}

	if cfg.SeedOnStart {
		if _, err := a.Seed(ctx, cfg.SeedFile); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// Seed loads the seed file (or the bundled data set) in one transaction.
func (a *App) Seed(ctx context.Context, path string) (seed.Summary, error) {
	f, err := seed.Load(path)
	if err != nil {
		return seed.Summary{}, fmt.Errorf("load seed: %w", err)
	}
	var sum seed.Summary
	err = db.NewGormTxRunner(a.DB).InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		sum, err = seed.Apply(dbc, f)
		return err
	})
	if err != nil {
		return sum, fmt.Errorf("apply seed: %w", err)
	}
	a.Log.Info("seed applied",
		"materials", sum.Materials,
		"compositions", sum.Compositions,
		"weapons", sum.Weapons,
	)
	return sum, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", addr)
		errCh <- a.Server.Run(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Clients.Close(ctx)
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
