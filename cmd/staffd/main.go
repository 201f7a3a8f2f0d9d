package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/staff-roster/internal/api/http"
	"github.com/spec-kit/staff-roster/internal/api/http/handlers"
	"github.com/spec-kit/staff-roster/internal/auth"
	"github.com/spec-kit/staff-roster/internal/config"
	"github.com/spec-kit/staff-roster/internal/events"
	"github.com/spec-kit/staff-roster/internal/observability"
	"github.com/spec-kit/staff-roster/internal/persistence"
	"github.com/spec-kit/staff-roster/internal/repository"
	"github.com/spec-kit/staff-roster/internal/sanitize"
	"github.com/spec-kit/staff-roster/internal/service"
	"github.com/spec-kit/staff-roster/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var staffRepo repository.StaffRepository
	if pool := pg.PoolHandle(); pool != nil {
		staffRepo = repository.NewStaffRepository(pool)
	} else {
		staffRepo = repository.NewMemoryStaffRepository()
	}
	staffRepo = repository.NewCachedStaffRepository(staffRepo, redis.Client, cfg.Redis.ListTTL, logger)

	verifier, err := auth.NewPinVerifier(cfg.Auth)
	if err != nil {
		logger.Fatal("invalid admin pin configuration", zap.Error(err))
	}
	if !verifier.Configured() {
		logger.Warn("no admin pin configured; PUT /api/staff will reject every request")
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	workerDone := worker.StartNotificationWorker(ctx, notificationService, logger)

	staffService := service.NewStaffService(service.StaffDependencies{
		StaffRepo:  staffRepo,
		Sanitizer:  sanitize.New(),
		Dispatcher: dispatcher,
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		BodyLimit:             cfg.App.BodyLimitBytes,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	}, metrics)
	staffHandler := handlers.NewStaffHandler(staffService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        healthHandler,
		Staff:         staffHandler,
		PinMiddleware: auth.NewPinMiddleware(verifier),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	<-workerDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
