package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/worker"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	mailer := notify.NewMailer(cfg.Notify)
	if !mailer.Enabled() {
		logger.Warn("smtp not configured, notifications will be dropped")
	}

	notificationWorker := worker.NewNotificationWorker(redis.Client, mailer, cfg.Notify, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := notificationWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
