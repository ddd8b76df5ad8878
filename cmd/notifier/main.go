package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/config"
	"github.com/tazhibayda/jobboard/internal/log"
	"github.com/tazhibayda/jobboard/internal/mail"
	"github.com/tazhibayda/jobboard/internal/notify"
	"github.com/tazhibayda/jobboard/internal/queue"
)

func main() {
	cfg := config.LoadNotifier()

	logger, err := log.Init(cfg.LogProduction)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.Exchange, cfg.Queue, cfg.BindKey)
	if err != nil {
		logger.Fatal("rabbit consumer init failed", zap.Error(err))
	}
	defer cons.Close()

	var sender mail.Sender = &mail.LogSender{Log: logger}
	if cfg.SendGridAPIKey != "" {
		sender = mail.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, mails are only logged")
	}
	h := notify.New(sender, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier up",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
		zap.String("key", cfg.BindKey),
		zap.Int("workers", cfg.Concurrency))

	if err := cons.Consume(ctx, cfg.Concurrency, h.Handle); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
