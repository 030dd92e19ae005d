package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/SversusN/tinyapp/config"
	"github.com/SversusN/tinyapp/internal/app"
	"github.com/SversusN/tinyapp/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	lg, err := logger.CreateLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Logger.Sync() }()

	a, err := app.New(cfg, lg)
	if err != nil {
		lg.Logger.Error("init app", zap.Error(err))
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
