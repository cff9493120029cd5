package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/application/stats"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/config"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/logger"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/transport/http/handlers"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/transport/http/router"
)

// sysClock implements stats.Clock using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

type App struct {
	Config *config.Config
	Server *http.Server
	DB     *sql.DB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		zlog.Info().
			Str("db_user", u.User.Username()).
			Str("db_host", u.Host).
			Str("db_db", u.Path).
			Msg("db config loaded")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			zlog.Fatal().Err(err).Msg("db ping failed")
		}
	}

	app := NewApp(cfg, db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server crashed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func NewApp(cfg *config.Config, db *sql.DB) *App {
	// 1) Infrastructure
	repo := postgres.New(db)

	// 2) Application
	svc := stats.New(repo, sysClock{})

	// 3) Transport
	h := handlers.NewStatsHandler(svc)
	z := handlers.NewHealthHandler(repo)

	// 4) Router
	httpHandler := router.New(h, z, router.RateLimit(cfg.RateLimit))

	// 5) Server
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		Config: cfg,
		Server: srv,
		DB:     db,
	}
}
