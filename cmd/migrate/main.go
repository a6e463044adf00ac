package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hackgods/homecare-visit-scheduling/internal/config"
	"github.com/hackgods/homecare-visit-scheduling/internal/db"
	"github.com/hackgods/homecare-visit-scheduling/internal/logging"
)

func main() {
	force := flag.Int("force", -1, "force the schema version instead of migrating up (dirty database recovery)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env).With().Str("service", "migrate").Logger()

	version, err := db.Migrate(cfg.PostgresDSN, *force)
	if err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Uint("version", version).Msg("schema up to date")
}
