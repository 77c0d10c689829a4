package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/antoniostano/babybot/internal/app"
	"github.com/antoniostano/babybot/internal/config"
	"github.com/antoniostano/babybot/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build failed", zap.Error(err))
	}
	if err := bot.Run(ctx); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
		_ = logger.Sync()
		stop()
		log.Fatalf("bot error: %v", err)
	}
}
