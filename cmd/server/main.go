package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campuspress/newsroom/internal/api"
	"github.com/campuspress/newsroom/internal/auth"
	"github.com/campuspress/newsroom/internal/cache"
	"github.com/campuspress/newsroom/internal/db"
	"github.com/campuspress/newsroom/internal/mailer"
	"github.com/campuspress/newsroom/internal/sanity"
	"github.com/campuspress/newsroom/internal/service"
	"github.com/campuspress/newsroom/pkg/config"
	"github.com/campuspress/newsroom/pkg/logging"
	"github.com/campuspress/newsroom/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Newsroom API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to the database and apply the schema
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis is optional; the services degrade to uncached reads
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, caching disabled", zap.Error(err))
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	// CMS client
	cms, err := sanity.New(&cfg.Sanity)
	if err != nil {
		logger.Fatal("Failed to configure CMS client", zap.Error(err))
	}

	// Wire services
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry())
	mail := mailer.New(&cfg.Email, cfg.Auth.OTPExpiryMinutes)

	authService := service.NewAuthService(database, tokens)
	articleService := service.NewArticleService(database, cms, redisCache)
	communityService := service.NewCommunityService(database, mail, redisCache, cfg.Auth.OTPExpiry())
	submissionService := service.NewSubmissionService(database)

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	apiRouter := api.NewRouter(database, redisCache, authService, articleService, communityService, submissionService, tokens)
	apiRouter.SetupRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
