package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"taxi/internal/app"
	"taxi/internal/config"
	"taxi/internal/handler"
	"taxi/internal/jobs"
	"taxi/internal/middleware"
	internalRedis "taxi/internal/redis"
	"taxi/internal/service"
	signaling "taxi/internal/signal"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := pflag.String("env-file", config.DefaultEnvFile, "dotenv file to load before reading the environment")
	port := pflag.String("port", "", "HTTP port, overrides SERVER_PORT")
	migrate := pflag.Bool("migrate", false, "apply the database schema on startup")
	pflag.Parse()

	// Load configuration.
	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	nrApp := newRelicApp(cfg.NewRelic, logger)

	repos, err := app.OpenRepositories(ctx, cfg, nrApp, *migrate, logger)
	if err != nil {
		return err
	}
	defer repos.Close()

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("REDIS_ADDR is empty, idempotency keys are disabled")
	}

	// Wire dependencies.
	server, adminService := wireServer(repos, redisClient, nrApp, cfg, logger)

	jobManager := jobs.NewJobManager(adminService, cfg.Jobs.StatsSchedule, logger)
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port, "store", cfg.Store.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	logger.Info("Server exited")
	return nil
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(repos *app.Repositories, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *slog.Logger) (*http.Server, *service.AdminService) {
	// Initialize services.
	passengerService := service.NewPassengerService(repos.Users, repos.Orders)
	driverService := service.NewDriverService(repos.Drivers, repos.Orders, cfg.Orders.NewOrdersLimit)
	adminService := service.NewAdminService(repos.Drivers, repos.Orders)

	deps := app.RouterDeps{
		UserHandler:   handler.NewUserHandler(passengerService),
		OrderHandler:  handler.NewOrderHandler(passengerService),
		DriverHandler: handler.NewDriverHandler(driverService),
		AdminHandler:  handler.NewAdminHandler(adminService),
		Relay:         signaling.NewRelay(logger),
		Access:        service.NewAccess(cfg.Access.AdminIDs),
		NewRelicApp:   nrApp,
		Logger:        logger,
	}
	if redisClient != nil {
		var store middleware.ResponseStore = internalRedis.NewResponseStore(redisClient)
		deps.ResponseStore = store
	}

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, adminService
}

func newRelicApp(cfg config.NewRelicConfig, logger *slog.Logger) *newrelic.Application {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil
	}

	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		logger.Error("failed to initialize New Relic", "error", err)
		return nil
	}
	logger.Info("New Relic enabled", "app", cfg.AppName)
	return nrApp
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
