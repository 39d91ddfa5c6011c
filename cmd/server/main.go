package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gwi.com/project-chat/internal/api"
	"gwi.com/project-chat/internal/config"
	"gwi.com/project-chat/internal/core"
	"gwi.com/project-chat/internal/logger"
	"gwi.com/project-chat/internal/metrics"
	"gwi.com/project-chat/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	log, err := logger.New(cfg.LogLevel, cfg.LogFilePath, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.DotEnvLoaded {
		log.Info("No .env file found, relying on environment variables")
	}

	// Initialize database store. Without one the API still serves and
	// reports the database as unavailable.
	dbStore := openStore(cfg, log)

	userService := core.NewUserService(dbStore, log)
	chatService := core.NewChatService(dbStore, log)
	assistantService := core.NewAssistantService(dbStore, log)
	diagnostics := core.NewDiagnostics(dbStore, cfg.DatabaseURL != "", cfg.DatabaseName != "")

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(userService, chatService, assistantService, diagnostics, log)
	router := api.NewRouter(apiHandler, metrics.New(), log, cfg.CorsAllowedOrigins)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting server", zap.String("addr", serverAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Could not listen", zap.String("addr", serverAddr), zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if dbStore != nil {
		if err := dbStore.Close(ctx); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}

	log.Info("Server exiting gracefully")
}

// openStore returns a nil interface when the store cannot be opened, so
// services see it as unconfigured.
func openStore(cfg *config.Config, log *zap.Logger) store.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := store.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		log.Error("Database not available, continuing without a store",
			zap.String("driver", cfg.StoreDriver),
			zap.Error(err),
		)
		return nil
	}
	log.Info("Database connected", zap.String("driver", cfg.StoreDriver))
	return s
}
