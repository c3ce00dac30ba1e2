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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coursehub-web/api/swagger"
	"github.com/noah-isme/coursehub-web/internal/backend"
	"github.com/noah-isme/coursehub-web/internal/handler"
	"github.com/noah-isme/coursehub-web/internal/middleware"
	"github.com/noah-isme/coursehub-web/internal/repository"
	"github.com/noah-isme/coursehub-web/internal/service"
	"github.com/noah-isme/coursehub-web/internal/session"
	"github.com/noah-isme/coursehub-web/pkg/cache"
	"github.com/noah-isme/coursehub-web/pkg/config"
	"github.com/noah-isme/coursehub-web/pkg/logger"
)

// @title CourseHub Web Gateway
// @version 0.1.0
// @description Browser-facing gateway for the CourseHub marketplace: sessions, guarded pages and catalog search
// @BasePath /
// @schemes http

const (
	cacheKeyPrefix  = "coursehub:cache"
	shutdownTimeout = 10 * time.Second
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	readyChecks := map[string]handler.Pinger{}
	if cfg.Session.Store == config.SessionStoreRedis || cfg.Catalog.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
		readyChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	var storage session.Storage = session.NewMemoryStorage()
	if cfg.Session.Store == config.SessionStoreRedis {
		storage = repository.NewSessionRepository(redisClient, cfg.Session.KeyPrefix)
	}

	metrics := service.NewMetricsService()
	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		backend.WithLogger(logr.Named("backend")),
		backend.WithObserver(metrics),
	)

	var catalogCache *service.CacheService
	if redisClient != nil {
		catalogCache = service.NewCacheService(
			repository.NewCacheRepository(redisClient, cacheKeyPrefix, logr),
			metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled,
		)
	}

	validate := service.NewValidator()
	courses := service.NewCourseService(client, catalogCache, validate, logr, cfg.Catalog.CacheTTL)
	categories := service.NewCategoryService(client, catalogCache, validate, logr, cfg.Catalog.CacheTTL)

	registry := service.NewSessionRegistry(service.SessionRegistryConfig{
		Storage:     storage,
		Namespacer:  session.NewNamespacer(cfg.Session.KeySecret),
		API:         client,
		Validator:   validate,
		Logger:      logr.Named("session"),
		Metrics:     metrics,
		TTL:         cfg.Session.TTL,
		IdleTimeout: cfg.Session.IdleEviction,
	})
	go registry.Run(ctx, cfg.Session.IdleEviction/2)

	router := handler.NewRouter(handler.RouterConfig{
		Logger:     logr,
		Metrics:    metrics,
		Registry:   registry,
		Courses:    courses,
		Categories: categories,
		Session: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.CookieSecure,
			MaxAge:     cfg.Session.TTL,
			InitWait:   cfg.Auth.InitWait,
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ReadyChecks:    readyChecks,
		EnableMetrics:  cfg.Metrics.Enabled,
		EnableDocs:     cfg.Env != config.EnvProduction,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL, "session_store", cfg.Session.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
