// Command seed wipes and reloads the demo catalog. Users and orders are kept.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"autocatalog-backend/internal/config"
	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/logger"
	"autocatalog-backend/internal/seed"

	"go.uber.org/zap"
)

func main() {
	force := flag.Bool("force", true, "wipe catalog tables before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := database.Init(cfg, log); err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	if err := seed.Run(context.Background(), cfg.AdminUsername, cfg.AdminPassword, *force, log); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}
