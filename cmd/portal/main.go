package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/intranet-portal/internal/api/http"
	"github.com/spec-kit/intranet-portal/internal/api/http/handlers"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/client"
	"github.com/spec-kit/intranet-portal/internal/config"
	"github.com/spec-kit/intranet-portal/internal/events"
	"github.com/spec-kit/intranet-portal/internal/observability"
	"github.com/spec-kit/intranet-portal/internal/persistence"
	"github.com/spec-kit/intranet-portal/internal/repository"
	"github.com/spec-kit/intranet-portal/internal/service"
	"github.com/spec-kit/intranet-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, closeStore, err := persistence.OpenKV(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open credential store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	credentials := repository.NewCredentialRepository(kv, cfg.Store.Namespace, logger.Named("store"))

	authn := client.NewAuthenticator(nil)
	apiClient := client.NewPortalClient(cfg.API.BaseURL, authn, cfg.API.RequestTimeout())

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(ctx, service.NewAuditService(dispatcher, logger, cfg.Audit))

	sessions := service.NewSessionService(service.SessionDependencies{
		Store:        credentials,
		Client:       apiClient,
		Carrier:      authn,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
		LoginTimeout: cfg.API.LoginTimeout(),
	})
	if cfg.API.InvalidateOnUnauthorized {
		authn.OnUnauthorized(sessions.HandleUnauthorized)
	}
	profile := service.NewProfileService(apiClient, sessions)
	directory := service.NewDirectoryService(apiClient, sessions)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	guard := auth.NewGuard(sessions, httptransport.LoginPath, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, kv, sessions, metrics),
		Session: handlers.NewSessionHandler(sessions, httptransport.HomePath, httptransport.LoginPath),
		Screens: handlers.NewScreensHandler(sessions, profile, httptransport.LoginPath),
		Notices: handlers.NewNoticesHandler(sessions, directory, httptransport.LoginPath),
		Users:   handlers.NewUsersHandler(sessions, directory, httptransport.LoginPath),
		Guard:   guard,
	})

	// Screens answer "loading" until the persisted session is restored.
	go sessions.Initialize(ctx)

	go func() {
		logger.Info("portal listening", zap.String("addr", cfg.App.Addr()), zap.String("api", cfg.API.BaseURL))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
