package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autocatalog-backend/internal/config"
	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/logger"
	"autocatalog-backend/internal/seed"
	"autocatalog-backend/internal/server"
	"autocatalog-backend/internal/sessionstore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	for _, w := range cfg.Warnings() {
		log.Warn("insecure configuration", zap.String("detail", w))
	}

	if err := database.Init(cfg, log); err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	ctx := context.Background()
	if err := seed.Run(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.ForceReseed, log); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}

	var storage fiber.Storage
	if cfg.UseRedisSessions() {
		rs, err := sessionstore.Connect(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			log.Fatal("redis session storage unavailable", zap.Error(err))
		}
		defer rs.Close()
		storage = rs
		log.Info("sessions stored in redis")
	} else {
		log.Info("sessions stored in memory")
	}

	app := server.New(server.Options{
		Config:   cfg,
		Logger:   log,
		Sessions: sessionstore.New(cfg, storage),
	})

	go func() {
		addr := ":" + cfg.HTTPPort
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := app.Listen(addr); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
