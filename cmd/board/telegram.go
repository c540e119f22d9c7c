package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"PriceBoard/internal/config"
	"PriceBoard/internal/notifier"
	"PriceBoard/internal/scheduler"
)

// startTelegram wires the digest and command polling when Telegram is
// configured. Nothing is started when it returns an error.
func startTelegram(ctx context.Context, cfg *config.Config, d scheduler.Dashboard, log *zap.Logger) (stop func(), err error) {
	if !cfg.TelegramEnabled() {
		return func() {}, nil
	}
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	sched := scheduler.NewScheduler(ctx, d, tn, log)
	if err := sched.RegisterDigest(cfg.Schedule.DigestCron); err != nil {
		return nil, fmt.Errorf("register digest: %w", err)
	}
	sched.Start()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info("telegram polling started")
	return sched.Stop, nil
}
