package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/eventsadmin/internal/config"
	"github.com/joshua-takyi/eventsadmin/internal/connect"
	"github.com/joshua-takyi/eventsadmin/internal/container"
	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/joshua-takyi/eventsadmin/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting events admin API server", "environment", cfg.Environment)

	mongoClient, err := connect.MongoDBConnect(context.Background(), cfg.MongoDBURI, cfg.MongoDBPassword)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully", "database", cfg.MongoDBDatabase)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase).EnsureIndexes(indexCtx); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		cancelIndexes()
		os.Exit(1)
	}
	cancelIndexes()

	var mirror helpers.ImageMirror
	if cfg.CloudinaryEnabled() {
		cld, err := connect.CloudinaryCredentials(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Error("Failed to connect to Cloudinary", "error", err)
			os.Exit(1)
		}
		mirror = helpers.NewCloudinaryMirror(cld, helpers.EventsFolder)
		logger.Info("Image mirroring enabled")
	}

	publisher, err := connect.Publisher(cfg.NATSURL, logger)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	if cfg.NATSURL != "" {
		logger.Info("Publishing notifications to NATS", "url", cfg.NATSURL)
	}

	googleKeys := helpers.NewRemoteJWKS(helpers.GoogleJWKSURL)

	// Initialize dependency container
	appContainer := container.NewContainer(cfg, logger, mongoClient, publisher, mirror, googleKeys.Keyfunc)

	// Setup routes
	router := routes.SetupRoutes(appContainer)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	googleKeys.Close()
	if err := publisher.Close(); err != nil {
		logger.Error("Error closing notification publisher", "error", err)
	}
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLevel(cfg.LogLevel, slog.LevelInfo),
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}

func parseLevel(raw string, fallback slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return fallback
	}
	return level
}
