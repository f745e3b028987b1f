package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bucketkit/bucketkit/internal/api"
	"github.com/bucketkit/bucketkit/internal/cache"
	"github.com/bucketkit/bucketkit/internal/config"
	"github.com/bucketkit/bucketkit/internal/objectstore"
	"github.com/bucketkit/bucketkit/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize storage service
	store := objectstore.New()

	statsCache, err := cache.NewStatsCache(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize stats cache")
	}
	if statsCache != nil {
		store.UseStatsCache(statsCache)
	}

	// Connect eagerly when credentials are configured; otherwise the client
	// connects through the API.
	if cfg.Storage.AccessKey != "" && cfg.Storage.SecretKey != "" {
		storageCfg := objectstore.Config{
			Endpoint:  cfg.Storage.Endpoint,
			Port:      cfg.Storage.Port,
			UseSSL:    cfg.Storage.UseSSL,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Region:    cfg.Storage.Region,
		}
		if err := store.Connect(context.Background(), storageCfg); err != nil {
			logger.Log.Fatal().Err(err).Str("endpoint", cfg.Storage.Endpoint).Msg("Failed to connect to object storage")
		}
		logger.Log.Info().Str("endpoint", cfg.Storage.Endpoint).Msg("Connected to object storage")
	}

	// Initialize HTTP server
	router := api.NewRouter(store, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
