package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/api"
	"github.com/hyperfolio/wallet-tracker/internal/api/handlers"
	"github.com/hyperfolio/wallet-tracker/internal/api/websocket"
	"github.com/hyperfolio/wallet-tracker/internal/config"
	"github.com/hyperfolio/wallet-tracker/internal/database"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
	"github.com/hyperfolio/wallet-tracker/internal/infrastructure"
	"github.com/hyperfolio/wallet-tracker/internal/services"
	"github.com/hyperfolio/wallet-tracker/internal/temporal"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting wallet-tracker API server",
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	logger.Info("Connecting to database...")
	repo, err := database.NewRepository(
		cfg.Database.ConnectionString,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	// Run migrations
	ctx := context.Background()
	logger.Info("Running database migrations...")
	if err := runMigrations(ctx, repo); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize services
	eventBus := services.NewEventBus()
	defer eventBus.Close()

	clock := temporal.NewClock()
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Hyperliquid.RequestTimeout) * time.Second,
	}
	client := hyperliquid.NewClient(cfg.Hyperliquid, httpClient, clock, logger)

	refresher := services.NewRefresher(cfg.Refresh, client, repo, eventBus, logger)
	if err := refresher.Start(); err != nil {
		logger.Fatal("Failed to start wallet refresher", zap.Error(err))
	}
	defer refresher.Stop()

	// Initialize handlers
	walletsHandler := handlers.NewWalletsHandler(repo, client, eventBus, logger)
	walletDataHandler := handlers.NewWalletDataHandler(repo, client, logger)
	userWalletHandler := handlers.NewUserWalletHandler(repo, client, eventBus, logger)
	wsHandler := websocket.NewHandler(eventBus, logger)

	// Start WebSocket event listener
	wsHandler.StartEventListener()

	// Setup router
	router := api.SetupRouter(
		walletsHandler,
		walletDataHandler,
		userWalletHandler,
		wsHandler,
		logger,
		cfg.Server.CORSAllowOrigin,
		clock,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started",
			zap.String("address", server.Addr))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// runMigrations runs database migrations
func runMigrations(ctx context.Context, repo *database.Repository) error {
	migrationSQL, err := os.ReadFile("internal/database/migrations/001_initial_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	return repo.RunMigrations(ctx, string(migrationSQL))
}
