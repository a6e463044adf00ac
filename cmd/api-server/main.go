package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hackgods/homecare-visit-scheduling/internal/api"
	"github.com/hackgods/homecare-visit-scheduling/internal/config"
	"github.com/hackgods/homecare-visit-scheduling/internal/db"
	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	"github.com/hackgods/homecare-visit-scheduling/internal/logging"
	"github.com/hackgods/homecare-visit-scheduling/internal/metrics"
	redisclient "github.com/hackgods/homecare-visit-scheduling/internal/redis"
	"github.com/hackgods/homecare-visit-scheduling/internal/visit"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env).With().Str("service", "api-server").Logger()
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Str("country", cfg.Holidays.Country).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.DBMaxConns)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewSchedulingMetrics(registry)

	store := holiday.NewCachedStore(holiday.NewPgStore(pgPool), rdb, cfg.Holidays.CacheTTL, logger)
	feed := holiday.NewFeedClient(cfg.Holidays.APIBaseURL, nil)
	calendar := holiday.NewService(store, feed, cfg.Holidays.Country, m, logger)
	calc := frequency.NewCalculator(calendar, m, logger)
	visits := visit.NewService(visit.NewPgRepository(pgPool), calc, cfg.Holidays.Settings(), logger)

	router := api.NewRouter(api.RouterConfig{
		Visits:          visits,
		Calculator:      calc,
		Calendar:        calendar,
		Settings:        cfg.Holidays.Settings(),
		ScheduleTimeout: cfg.ScheduleTimeout,
		Postgres:        pgPool.Ping,
		Redis:           api.RedisPing(rdb),
		Metrics:         m,
		Gatherer:        registry,
		Logger:          logger,
		Env:             cfg.Env,
		Version:         version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.ScheduleTimeout + 5*time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
