package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/crm-backend/internal/config"
	"github.com/yungbote/crm-backend/internal/data/db"
	"github.com/yungbote/crm-backend/internal/data/repos"
	"github.com/yungbote/crm-backend/internal/http"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	Cfg      config.Config
	DB       *db.Service
	Bus      bus.Bus
	Metrics  *observability.Metrics
	Repos    repos.Set
	Services Services
	Server   *http.Server

	shutdownOTel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: serviceName,
		Environment: cfg.LogMode,
		Exporter:    cfg.OTelExporter,
		Endpoint:    cfg.OTelEndpoint,
	})
	metrics := observability.Init(cfg.MetricsEnabled)

	store, err := db.Open(cfg, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init %s: %w", cfg.DBDriver, err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("%s automigrate: %w", cfg.DBDriver, err)
	}

	eventBus, err := bus.New(cfg, log)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("init event bus: %w", err)
	}

	reposet := wireRepos(store.DB(), log)
	serviceset := wireServices(store.DB(), log, reposet, eventBus, metrics)
	handlerset := wireHandlers(log, serviceset, store.Ping)
	server := wireServer(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           store,
		Bus:          eventBus,
		Metrics:      metrics,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		shutdownOTel: shutdownOTel,
	}, nil
}

// Run serves HTTP until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Metrics != nil {
		a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartDBCollector(gctx, a.Log, a.DB.DB(), 0)
	}

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Address(), "db_driver", a.DB.Driver(), "event_bus", a.Cfg.EventBus)
		return a.Server.Run(gctx, a.Cfg.Address())
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("event bus close failed", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
