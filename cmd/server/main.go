package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/civicmed/outbreak-engine/internal/adapter/api"
	"github.com/civicmed/outbreak-engine/internal/adapter/api/handler"
	"github.com/civicmed/outbreak-engine/internal/adapter/api/middleware"
	"github.com/civicmed/outbreak-engine/internal/adapter/cache"
	"github.com/civicmed/outbreak-engine/internal/adapter/metrics"
	"github.com/civicmed/outbreak-engine/internal/adapter/repository/postgres"
	"github.com/civicmed/outbreak-engine/internal/domain"
	"github.com/civicmed/outbreak-engine/internal/pkg/config"
	"github.com/civicmed/outbreak-engine/internal/pkg/logger"
	"github.com/civicmed/outbreak-engine/internal/usecase"

	_ "github.com/lib/pq" // postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.NewEngineMetrics()

	// --- Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		log.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	// --- Result Cache ---
	// Redis is optional: single-instance deployments run on the in-process
	// cache, multi-instance ones share scan results through redis.
	var resultCache domain.ResultCache = cache.NewMemory(cfg.ScanCacheTTL, cfg.ScanCacheCapacity, m)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("could not connect to redis, falling back to in-memory cache", "error", err)
		} else {
			resultCache = cache.NewRedis(redisClient, cfg.ScanCacheTTL, log)
			log.Info("using redis result cache", "addr", cfg.RedisAddr)
		}
	}

	// --- Repositories ---
	caseRepo := postgres.NewCaseRepository(db, log)
	statRepo := postgres.NewStatisticRepository(db, log)
	geoRepo := postgres.NewGeographyRepository(db, log)
	accountRepo := postgres.NewAccountRepository(db, log)
	notificationRepo := postgres.NewNotificationRepository(db, log)

	// --- Engine ---
	rules := usecase.DefaultRules()
	risk := usecase.RiskConfig{
		CriticalCases:  cfg.RiskCriticalCases,
		SevereCases:    cfg.RiskSevereCases,
		HighMultiplier: cfg.RiskHighMultiplier,
	}

	aggregator := usecase.NewAggregator(caseRepo, statRepo, geoRepo, log)
	detector := usecase.NewDetector(rules, risk)
	dispatcher := usecase.NewDispatcher(accountRepo, notificationRepo, cfg.NotifyDedupWindow, log, m)
	scanService := usecase.NewScanService(aggregator, detector, dispatcher, resultCache, rules, log, m)

	// --- HTTP Server ---
	scanHandler := handler.NewScanHandler(scanService, log)
	limiter := rate.NewLimiter(rate.Limit(cfg.ScanRatePerSecond), cfg.ScanRateBurst)
	router := api.NewRouter(log, scanHandler, middleware.RateLimit(limiter, log))

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(log)(router),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting outbreak engine server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
