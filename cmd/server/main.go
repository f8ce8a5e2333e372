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

	"github.com/ikkim/photoshare-backend/config"
	"github.com/ikkim/photoshare-backend/internal/app/controller"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	"github.com/ikkim/photoshare-backend/internal/db"
	"github.com/ikkim/photoshare-backend/internal/middleware"
	"github.com/ikkim/photoshare-backend/internal/router"
	"github.com/ikkim/photoshare-backend/internal/scheduler"
	"github.com/ikkim/photoshare-backend/internal/storage"
	ws "github.com/ikkim/photoshare-backend/internal/websocket"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	appredis "github.com/ikkim/photoshare-backend/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Log.Level
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
		FilePath:    cfg.Log.File,
	})
	defer logger.Close()

	logger.Info("Starting photo sharing backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Image host
	var imageStorage service.ImageStorage
	switch cfg.S3.Driver {
	case "memory":
		logger.Warn("Using in-memory image storage, uploads are lost on restart")
		imageStorage = storage.NewMemoryStorage(cfg.S3.BaseURL, cfg.S3.RootFolder)
	default:
		imageStorage = storage.NewS3Storage(&cfg.S3)
	}

	// Redis backs the token blacklist and the rate limiters. Without it the
	// interfaces stay nil and the features are skipped.
	var (
		redisClient    *goredis.Client
		blacklist      service.TokenBlacklist
		revoked        middleware.RevocationChecker
		commentLimiter service.RateLimiter
		authLimiter    middleware.Limiter
	)
	if cfg.Redis.Enabled {
		redisClient, err = appredis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, running without token blacklist and rate limits", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redisClient.Close()
			tokenBlacklist := appredis.NewTokenBlacklist(redisClient)
			blacklist = tokenBlacklist
			revoked = tokenBlacklist
			commentLimiter = appredis.NewRateLimiter(redisClient, appredis.LimiterComments, cfg.Limits.CommentsPerMinute, time.Minute)
			authLimiter = appredis.NewRateLimiter(redisClient, appredis.LimiterAuth, cfg.Limits.AuthPerMinute, time.Minute)
		}
	}

	// Comment stream hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Initialize repositories
	conn := db.GetDB()
	userRepo := repository.NewUserRepository(conn)
	resetRepo := repository.NewPasswordResetRepository(conn)
	photoRepo := repository.NewPhotoRepository(conn)
	tagRepo := repository.NewTagRepository(conn)
	transformationRepo := repository.NewTransformationRepository(conn)
	commentRepo := repository.NewCommentRepository(conn)
	ratingRepo := repository.NewRatingRepository(conn)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		resetRepo,
		blacklist,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		cfg.JWT.ResetTokenExpiry,
	)
	userService := service.NewUserService(userRepo, photoRepo, commentRepo, imageStorage)
	photoService := service.NewPhotoService(photoRepo, tagRepo, ratingRepo, imageStorage)
	transformationService := service.NewTransformationService(transformationRepo, photoRepo, imageStorage)
	tagService := service.NewTagService(tagRepo)
	commentService := service.NewCommentService(commentRepo, photoRepo, commentLimiter, hub)
	ratingService := service.NewRatingService(ratingRepo, photoRepo)

	// Initialize controllers
	maxUpload := cfg.Limits.MaxUploadBytes
	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewUserController(userService, maxUpload),
		controller.NewPhotoController(photoService, maxUpload),
		controller.NewTransformationController(transformationService),
		controller.NewTagController(tagService),
		controller.NewCommentController(commentService, hub, cfg.CORS.AllowedOrigins),
		controller.NewRatingController(ratingService),
		controller.NewHealthController(conn, redisClient),
		middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo, revoked),
		authLimiter,
		cfg,
	)

	cleanup := scheduler.NewCleanupScheduler(cfg.Scheduler.CleanupSpec, resetRepo)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start cleanup scheduler", err)
	}
	defer cleanup.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": server.Addr,
			"pid":     os.Getpid(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	cancel()

	logger.Info("Server stopped successfully")
}
