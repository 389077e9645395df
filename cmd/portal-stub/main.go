// Command portal-stub serves the development double of the intranet API.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/config"
	"github.com/spec-kit/intranet-portal/internal/devserver"
	"github.com/spec-kit/intranet-portal/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	stubApp := cfg.App
	stubApp.Name += "-stub"
	logger, err := observability.NewLogger(cfg.Logger, stubApp)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	dir, err := devserver.NewSeededDirectory(cfg.DevServer.BcryptCost, cfg.DevServer.SeedPassword)
	if err != nil {
		logger.Fatal("failed to seed directory", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.DevServer.JWTSecret, cfg.DevServer.AccessTokenTTLMinutes)
	app := devserver.New(dir, tokens, logger.Named("devserver")).App()

	go func() {
		logger.Info("dev api listening", zap.String("addr", cfg.DevServer.Addr()))
		if err := app.Listen(cfg.DevServer.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	_ = app.Shutdown()
}
