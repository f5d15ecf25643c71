package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/db"
	apphttp "github.com/yungbote/scandine-backend/internal/http"
	"github.com/yungbote/scandine-backend/internal/jobs"
	"github.com/yungbote/scandine-backend/internal/jobs/worker"
	"github.com/yungbote/scandine-backend/internal/observability"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

// Base is the database-only slice of the app used by one-shot CLI commands.
type Base struct {
	Log *logger.Logger
	Cfg Config
	DB  *gorm.DB

	dbService *db.Service
}

// OpenBase loads config, connects to the database and migrates the schema.
func OpenBase() (*Base, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbService, err := db.NewService(log, cfg.dbConfig())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	return &Base{Log: log, Cfg: cfg, DB: dbService.DB(), dbService: dbService}, nil
}

func (b *Base) Close() {
	if b == nil {
		return
	}
	if b.dbService != nil {
		if err := b.dbService.Close(); err != nil {
			b.Log.Warn("Closing database failed", "error", err)
		}
		b.dbService = nil
	}
	b.Log.Sync()
}

type App struct {
	*Base
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *apphttp.Server
	Worker   *worker.Worker

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	base, err := OpenBase()
	if err != nil {
		return nil, err
	}
	log := base.Log

	otelCfg := observability.OtelConfigFromEnv()
	otelShutdown := observability.InitOTel(ctx, log, otelCfg)
	serviceName := ""
	if otelCfg.Enabled {
		serviceName = otelCfg.ServiceName
	}

	clients, err := wireClients(ctx, log, base.Cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		base.Close()
		return nil, err
	}

	reposet := wireRepos(base.DB, log)
	serviceset := wireServices(base.DB, log, base.Cfg, reposet, clients)
	server := apphttp.NewServer(log, wireRouterConfig(base.DB, log, base.Cfg, serviceName, reposet, serviceset))
	w := worker.NewWorker(log, jobs.MaintenanceTasks(jobs.MaintenanceDeps{
		Log:               log,
		Subscriptions:     serviceset.Subscriptions,
		UserTokenRepo:     reposet.UserToken,
		PasswordResetRepo: reposet.PasswordReset,
		SweepInterval:     base.Cfg.TrialSweepInterval,
	})...)

	return &App{
		Base:         base,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		Worker:       w,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background maintenance. It is safe to call once.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if a.Worker != nil {
		a.Worker.Start(ctx)
	}
}

// Run serves HTTP until ctx is cancelled, then drains requests and stops the worker.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	a.Start(ctx)
	err := a.Server.Run(ctx, a.Cfg.HTTPAddr, a.Cfg.ShutdownTimeout)
	a.stopWorker()
	return err
}

func (a *App) stopWorker() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		if a.Worker != nil {
			a.Worker.Wait()
		}
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.stopWorker()
	a.Clients.Close(a.Log)
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	a.Base.Close()
}
