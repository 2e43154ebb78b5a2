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

	"github.com/bsn-social/mining/internal/api"
	"github.com/bsn-social/mining/internal/cache"
	"github.com/bsn-social/mining/internal/db"
	"github.com/bsn-social/mining/internal/mining"
	"github.com/bsn-social/mining/pkg/config"
	"github.com/bsn-social/mining/pkg/logging"
	"github.com/bsn-social/mining/pkg/telemetry"
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
	logger.Info("Starting BSN Mining API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Initialize database
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize Redis cache (optional)
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	// Wire the mining subsystem
	store := db.NewStore(database)
	notifier := mining.NewRedisNotifier(redisCache)
	locks := mining.NewAccountLocks()
	achievements := mining.NewEngine(store, notifier, locks)
	controller := mining.NewController(store, notifier, locks, &cfg.Mining)
	recorder := mining.NewRecorder(store, achievements, locks, &cfg.Mining)

	// Seed the achievement catalog exactly once
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mining.EnsureCatalog(seedCtx, store); err != nil {
		cancelSeed()
		logger.Fatal("Failed to seed achievement catalog", zap.Error(err))
	}
	cancelSeed()

	// Start the mining supervisor
	supervisorCtx, cancelSupervisor := context.WithCancel(context.Background())
	supervisor := mining.NewSupervisor(store, controller, &cfg.Mining)
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		if err := supervisor.Run(supervisorCtx); err != nil && err != context.Canceled {
			logger.Error("Supervisor exited", zap.Error(err))
		}
	}()

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	router := api.NewRouter(database, redisCache, controller, recorder, achievements, store, &cfg.Mining)
	router.SetupRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
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

	cancelSupervisor()
	<-supervisorDone
	controller.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
