package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/scholarsync/scholarsync-api/api/swagger"
	"github.com/scholarsync/scholarsync-api/internal/handler"
	"github.com/scholarsync/scholarsync-api/internal/repository"
	"github.com/scholarsync/scholarsync-api/internal/service"
	"github.com/scholarsync/scholarsync-api/pkg/cache"
	"github.com/scholarsync/scholarsync-api/pkg/config"
	"github.com/scholarsync/scholarsync-api/pkg/database"
	"github.com/scholarsync/scholarsync-api/pkg/logger"
	corsmiddleware "github.com/scholarsync/scholarsync-api/pkg/middleware/cors"
	reqidmiddleware "github.com/scholarsync/scholarsync-api/pkg/middleware/requestid"
	"github.com/scholarsync/scholarsync-api/pkg/storage"
)

// @title ScholarSync API
// @version 1.0.0
// @description Student records service with chat and analytics
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Analytics.CacheTTL, logr, true)
		defer redisClient.Close() //nolint:errcheck
	}

	uploadStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "scholarsync-api",
		Audience:           []string{"scholarsync"},
	})
	studentService := service.NewStudentService(studentRepo, userRepo, cacheService, validate, logr)
	chatService := service.NewChatService(chatRepo, cfg.Chat.HistoryLimit, cfg.Chat.MaxMessageLength, logr)
	analyticsService := service.NewAnalyticsService(analyticsRepo, cacheService, metricsService, logr)
	uploadService := service.NewUploadService(studentRepo, uploadStore, signer, cfg.Uploads.MaxFileSizeBytes, cfg.Uploads.AllowedMIMEs, logr)
	exportService := service.NewExportService(studentRepo, logr)
	userService := service.NewUserService(userRepo, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Dependencies{
		Auth:      handler.NewAuthHandler(authService),
		Students:  handler.NewStudentHandler(studentService, exportService),
		Chat:      handler.NewChatHandler(chatService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Uploads:   handler.NewUploadHandler(uploadService),
		Users:     handler.NewUserHandler(userService),
		Metrics:   handler.NewMetricsHandler(metricsService),

		AuthService:      authService,
		MetricsService:   metricsService,
		AnalyticsEnabled: cfg.Analytics.Enabled,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
