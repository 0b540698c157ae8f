package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"flytrap/docs"
	"flytrap/internal/auth"
	"flytrap/internal/cache"
	"flytrap/internal/config"
	"flytrap/internal/db"
	"flytrap/internal/guard"
	"flytrap/internal/handler"
	"flytrap/internal/logging"
	"flytrap/internal/metrics"
	"flytrap/internal/repository"
	"flytrap/internal/router"
	"flytrap/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Flytrap API
// @version 1.0
// @description Authentication and authorization API of the flytrap error tracker.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logger)
	defer func() { _ = cacheClient.Close() }()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, root status is read from the database", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	// Initialize auth components
	roots := auth.NewCachedRootStatus(userRepo, cacheClient, cfg.RootCacheTTL)
	tokens := auth.NewManager(auth.NewCodec(cfg.JWTSecret), roots, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	g := guard.New(tokens, projectRepo, m, logger)

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens, m)
	userService := service.NewUserService(userRepo, projectRepo, roots)
	projectService := service.NewProjectService(projectRepo)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, g, m, logger, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, cfg.Cookie, tokens.RefreshTTL()),
		Users:    handler.NewUserHandler(userService),
		Projects: handler.NewProjectHandler(projectService),
	})

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}
	logger.Info("swagger documentation available", zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("http server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
