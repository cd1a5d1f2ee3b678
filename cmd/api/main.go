// @title ECG Academy API
// @version 1.0
// @description Activity logging, quiz points ledger and research exports for the ECG Academy platform.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "ecg-academy/cmd/api/docs"
	"ecg-academy/internal/adapter"
	"ecg-academy/internal/cache"
	"ecg-academy/internal/config"
	"ecg-academy/internal/database"
	"ecg-academy/internal/domain"
	"ecg-academy/internal/handler"
	"ecg-academy/internal/logger"
	"ecg-academy/internal/middleware"
	"ecg-academy/internal/scheduler"
	"ecg-academy/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	// Redis is optional; without it caches and session dedupe are per process.
	var appCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appCache = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	} else {
		appCache = adapter.NewMemoryCache()
		appLogger.Warn("Redis address not configured, using in-process cache")
	}

	sessionTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.LoginSession, 12*time.Hour)
	statsTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.AdminUserStats, 10*time.Minute)
	replayTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.QuizIdempotency, 24*time.Hour)

	// Initialize services
	authService, err := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	eventLog := service.NewEventLog(store, appLogger)
	activityService := service.NewActivityService(store, adapter.NewCacheSessionTracker(appCache, sessionTTL), appLogger)
	quizService := service.NewQuizService(store, appCache, replayTTL, appLogger)
	progressService := service.NewProgressService(store, appLogger)
	statsService := service.NewAdminStatsService(store, appCache, statsTTL, nil, appLogger)
	adminServices := handler.AdminServices{
		Clinical:    service.NewClinicalImportService(store, cfg.Import.MaxRows, cfg.ImportLocation(), appLogger),
		Linked:      service.NewLinkedExportService(store, cfg.Export.ChunkSize, cfg.Export.FetchConcurrency, appLogger),
		Collections: service.NewCollectionExportService(store, appLogger),
		Stats:       statsService,
		Content:     service.NewAdminContentService(store, appLogger),
	}

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		interval := cfg.ParseTTLStringOrDefault(cfg.Scheduler.StatsRefreshInterval, 15*time.Minute)
		jobs = scheduler.New(statsService, interval, appLogger)
		if err := jobs.Start(); err != nil {
			appLogger.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(appLogger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Session-ID",
		MaxAge:       300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app, handler.Handlers{
		Activity: handler.NewActivityHandler(activityService, eventLog),
		Quiz:     handler.NewQuizHandler(quizService),
		User:     handler.NewUserHandler(progressService),
		Admin:    handler.NewAdminHandler(adminServices),
	}, authService, cfg.Auth.AdminRole)

	go func() {
		appLogger.Info("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
			zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	if jobs != nil {
		jobs.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
