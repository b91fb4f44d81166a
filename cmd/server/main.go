package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-backoffice/internal/app"
	"finance-backoffice/internal/config"
	"finance-backoffice/internal/pkg/logger"

	"go.uber.org/zap"

	_ "finance-backoffice/docs" // Swagger docs
)

// @title Finance Back-office API
// @version 1.0
// @description Authentication, role-gated dashboards and paginated transaction records.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.IsDev()})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if !cfg.EnvFileLoaded {
		zl.Debug("no .env file found, using environment only")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to start application", zap.Error(err))
	}

	// Graceful shutdown
	go gracefulShutdown(a, zl)

	if err := a.Run(); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(a *app.App, zl *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
		return
	}
	zl.Info("server stopped gracefully")
}
