// @title           Workspace Service API
// @version         1.0
// @description     Shared cooking workspaces with live presence

// @host      localhost:8080
// @BasePath  /api

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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"workspace-service/internal/client"
	"workspace-service/internal/config"
	"workspace-service/internal/database"
	"workspace-service/internal/job"
	"workspace-service/internal/metrics"
	"workspace-service/internal/notify"
	"workspace-service/internal/repository"
	"workspace-service/internal/router"
	"workspace-service/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Workspace Service",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("notifier", cfg.Notifier.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database is required; keep retrying until it answers or we are told to stop.
	db, err := database.Connect(ctx, database.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Debug:           cfg.Logger.Level == "debug",
	}, cfg.Database.RetryInterval, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Database connected successfully")

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed")

	m := metrics.NewWithRegistry(prometheus.DefaultRegisterer, logger)
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	statsDone := database.StartDBStatsCollector(db, m, 15*time.Second)
	defer close(statsDone)

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = database.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("Redis unavailable", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			logger.Info("Redis connected successfully")
		}
	}

	notifier, err := notify.New(ctx, notify.Options{
		Driver:      cfg.Notifier.Driver,
		Redis:       redisClient,
		NATSURL:     cfg.NATS.URL,
		NATSName:    cfg.NATS.Name,
		PostgresURL: cfg.Database.URL,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Failed to initialize notifier", zap.Error(err))
	}
	defer notifier.Close()

	generator := client.NewTextGenerator(client.TextGenConfig{
		BaseURL:     cfg.TextGen.BaseURL,
		APIKey:      cfg.TextGen.APIKey,
		Model:       cfg.TextGen.Model,
		MaxTokens:   cfg.TextGen.MaxTokens,
		Temperature: cfg.TextGen.Temperature,
		Timeout:     cfg.TextGen.Timeout,
	}, logger, m)

	// Server-wide sweep for workspaces nobody has open any more.
	presenceService := service.NewPresenceService(
		repository.NewPresenceRepository(db), notifier, m, logger, cfg.Presence, nil,
	)
	scheduler := job.NewScheduler(logger)
	if err := scheduler.Add("presence-reaper", cfg.Presence.CleanupSchedule,
		job.NewReaperJob(presenceService, cfg.Presence.CleanupTimeout, logger)); err != nil {
		logger.Fatal("Failed to schedule presence reaper", zap.Error(err))
	}
	scheduler.Start()

	collector := metrics.NewPresenceCollector(db, m, logger, cfg.Presence.UserTimeout)
	collector.Start()

	r := router.Setup(router.Config{
		DB:             db,
		Redis:          redisClient,
		Notifier:       notifier,
		NotifierDriver: cfg.Notifier.Driver,
		Generator:      generator,
		Presence:       cfg.Presence,
		Logger:         logger,
		Metrics:        m,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		logger.Info("Workspace Service started successfully", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	collector.Stop()
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Presence reaper still running at shutdown")
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
