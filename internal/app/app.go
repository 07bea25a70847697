package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aryansondharva/Aura/internal/data/db"
	httpserver "github.com/aryansondharva/Aura/internal/http"
	httpH "github.com/aryansondharva/Aura/internal/http/handlers"
	httpMW "github.com/aryansondharva/Aura/internal/http/middleware"
	"github.com/aryansondharva/Aura/internal/jobs"
	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *httpserver.Server

	dbService    *db.Service
	sweep        *jobs.SweepJob
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New builds the whole process: database, integrations, services and the HTTP server.
func New(ctx context.Context) (*App, error) {
	LoadDotEnv()
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is not set; every /api request will be rejected")
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv())
	metrics := observability.Init(log)

	dbService, err := db.NewService(log, db.ConfigFromEnv())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	reposet := wireRepos(theDB, log)
	clientset := wireClients(ctx, log)
	serviceset := wireServices(log, cfg, reposet, clientset)

	checks := map[string]httpH.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := theDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clientset.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clientset.Redis.Ping(ctx).Err() }
	}

	var auth *httpMW.AuthMiddleware
	if cfg.JWTSecretKey != "" {
		auth = httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey)
	}

	server := httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        metrics,
		AuthMiddleware: auth,

		HealthHandler:   httpH.NewHealthHandler(checks),
		DocumentHandler: httpH.NewDocumentHandler(log, serviceset.Ingestion, cfg.UploadMaxBytes),
		TopicHandler:    httpH.NewTopicHandler(log, serviceset.Topic),
		QuizHandler:     httpH.NewQuizHandler(log, serviceset.Quiz),
		AttemptHandler:  httpH.NewAttemptHandler(log, serviceset.Progress),
		ReviewHandler:   httpH.NewReviewHandler(log, serviceset.Review),
		ChatHandler:     httpH.NewChatHandler(log, serviceset.Chat),
	}, cfg.HTTPAddr)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		Server:       server,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work. It is a no-op when already started.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Cfg.SweepInterval <= 0 {
		a.Log.Info("overdue sweep disabled")
		return nil
	}
	sweep, err := jobs.NewSweepJob(a.Log, a.Services.Review, a.Cfg.SweepInterval)
	if err != nil {
		return err
	}
	if err := sweep.Start(ctx); err != nil {
		return err
	}
	a.sweep = sweep
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(ctx)
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	var errs []error
	if a.sweep != nil {
		if err := a.sweep.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("sweep shutdown: %w", err))
		}
	}
	if a.Services.Notifier != nil {
		a.Services.Notifier.Wait()
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
