package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/audit"
	"github.com/baechuer/explore-with-me/services/main-service/internal/config"
	"github.com/baechuer/explore-with-me/services/main-service/internal/infrastructure/postgres"
	"github.com/baechuer/explore-with-me/services/main-service/internal/infrastructure/redis"
	"github.com/baechuer/explore-with-me/services/main-service/internal/infrastructure/stats"
	"github.com/baechuer/explore-with-me/services/main-service/internal/pkg/logger"
	"github.com/baechuer/explore-with-me/services/main-service/internal/service"
	"github.com/baechuer/explore-with-me/services/main-service/internal/transport/rest"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logger.Logger.With().
		Str("service", "main-service").
		Str("env", cfg.AppEnv).
		Logger()

	// Root ctx with signal cancellation
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	dbPool, err := pgxpool.New(rootCtx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres pool create failed")
	}
	defer dbPool.Close()

	repo := postgres.New(dbPool)
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		err := repo.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres ping failed")
		}
		log.Info().Msg("postgres connected")
	}

	// ---- Redis (views cache + rate limiter; both degrade when it is down) ----
	cache := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cache.Close() }()
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		if err := cache.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Msg("redis connected")
		}
		cancel()
	}

	// ---- Stats service ----
	statsClient := stats.NewClient(cfg.StatsURL, cfg.StatsTimeout, logger.Logger)
	views := service.NewViewCounter(statsClient, cache, cfg.AppName, cfg.ViewsTTL, service.SysClock{})

	// ---- Application services ----
	auditLog := audit.New(logger.Logger)
	h := rest.NewHandler(rest.Services{
		Users:        service.NewUserService(repo),
		Categories:   service.NewCategoryService(repo),
		Events:       service.NewEventService(repo, views, service.SysClock{}),
		Compilations: service.NewCompilationService(repo, views),
		Requests:     service.NewRequestService(repo, auditLog, service.WithSeatRelease(cfg.CancelReleasesSeat)),
		Ratings:      service.NewRatingService(repo, auditLog),
	}, map[string]rest.Pinger{
		"postgres": repo,
		"redis":    cache,
	})

	httpHandler := rest.NewRouter(rest.RouterDeps{
		Handler: h,
		Limiter: cache,
		RateLimit: rest.RateLimitConfig{
			Enabled: cfg.RLEnabled,
			Limit:   cfg.RLLimit,
			Window:  cfg.RLWindow,
		},
	})

	// ---- Outbox worker (request.* and rating.* events) ----
	if cfg.OutboxEnabled {
		repo.StartOutboxWorker(rootCtx, postgres.OutboxConfig{
			RabbitURL: cfg.RabbitURL,
			Exchange:  cfg.RabbitExchange,
			AppID:     cfg.AppName,
			Audit:     auditLog,
		})
		repo.StartOutboxCleanup(rootCtx, time.Hour, cfg.OutboxRetention)
		log.Info().Str("exchange", cfg.RabbitExchange).Msg("outbox worker started")
	}

	// ---- HTTP server ----
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
