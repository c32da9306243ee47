package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"flutter/config"
	"flutter/internal/app"
	"flutter/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("flutter stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
