package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/auth"
	"github.com/sirosfoundation/go-credential-nodes/internal/backend"
	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/server"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
	"github.com/sirosfoundation/go-credential-nodes/pkg/logging"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "Path to configuration file")
	version    = "dev"
	buildTime  = "unknown"
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Credential Node Server",
		zap.String("version", version),
		zap.String("build_time", buildTime),
	)

	// Initialize state store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := backend.New(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize state store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	logger.Info("State store initialized", zap.String("type", cfg.StateStore.Type))

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping state store", zap.Error(err))
	}

	// Wire the remote service client behind the worker token source
	tokens := auth.NewWorkerTokenSource(&cfg.Worker, logger)
	svc := credsvc.NewClient(&cfg.CredentialService, tokens, logger)

	// Build the node registry and flow runner
	runner := server.NewRunner(store, state.DefaultKeys(), logger)
	server.RegisterNodes(runner, cfg, svc, logger)

	manager := server.NewManager(runner, logger)
	router := server.Router(cfg, manager, runner)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("address", cfg.Server.Address()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
