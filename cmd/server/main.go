package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/cache"
	"github.com/SAP-F-2025/school-assessment-service/internal/config"
	"github.com/SAP-F-2025/school-assessment-service/internal/events"
	"github.com/SAP-F-2025/school-assessment-service/internal/handlers"
	"github.com/SAP-F-2025/school-assessment-service/internal/middleware"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/school-assessment-service/internal/services"
	"github.com/SAP-F-2025/school-assessment-service/internal/utils"
	"github.com/SAP-F-2025/school-assessment-service/internal/validator"
	"github.com/SAP-F-2025/school-assessment-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger.Slog())

	if err := run(cfg, logger); err != nil {
		logger.LogError(err, "Server stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.SlogLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := pkg.Migrate(db); err != nil {
			return err
		}
	}

	var directoryCache cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, directory lookups will not be cached", "error", err)
	} else {
		defer redisClient.Close()
		directoryCache = cache.NewRedisCache(redisClient, logger.Slog())
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger.Slog())
	if err != nil {
		logger.Warn("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(logger.Slog())
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.LogError(err, "Failed to close event publisher")
		}
	}()

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repo:              postgres.NewRepository(db),
		Cache:             directoryCache,
		DirectoryCacheTTL: cfg.DirectoryCacheTTL,
		Publisher:         publisher,
		Validator:         validator.New(),
		Logger:            logger.Slog(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))

	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router, authenticator(cfg, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func authenticator(cfg *config.Config, logger utils.Logger) gin.HandlerFunc {
	if cfg.Casdoor.ClientID == "" && !cfg.IsProduction() {
		logger.Warn("Casdoor not configured, trusting identity headers")
		return middleware.HeaderAuthenticate(logger)
	}
	return middleware.Authenticate(middleware.NewCasdoorParser(cfg.Casdoor), logger)
}
