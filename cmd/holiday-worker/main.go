package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/homecare-visit-scheduling/internal/config"
	"github.com/hackgods/homecare-visit-scheduling/internal/db"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	"github.com/hackgods/homecare-visit-scheduling/internal/logging"
	redisclient "github.com/hackgods/homecare-visit-scheduling/internal/redis"
	"github.com/hackgods/homecare-visit-scheduling/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env).With().Str("service", "holiday-worker").Logger()
	logger.Info().Str("env", cfg.Env).Dur("interval", cfg.Holidays.SyncInterval).Str("country", cfg.Holidays.Country).
		Msg("holiday-worker starting up")

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

	// writes go through the cache so api-server replicas see new holidays
	store := holiday.NewCachedStore(holiday.NewPgStore(pgPool), rdb, cfg.Holidays.CacheTTL, logger)
	feed := holiday.NewFeedClient(cfg.Holidays.APIBaseURL, nil)
	calendar := holiday.NewService(store, feed, cfg.Holidays.Country, nil, logger)

	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	job := worker.NewHolidaySync(calendar, locker, cfg.LockTTL, logger)

	job.Run(rootCtx, cfg.Holidays.SyncInterval)
}
