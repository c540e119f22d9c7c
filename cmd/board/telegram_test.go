package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PriceBoard/internal/config"
	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/timeframe"
)

type idleDashboard struct{}

func (idleDashboard) Snapshot() dashboard.State { return dashboard.State{} }
func (idleDashboard) SelectTimeframe(timeframe.Timeframe) {}
func (idleDashboard) SelectTab(dashboard.Tab) {}

func telegramConfig(digest string) *config.Config {
	cfg := &config.Config{}
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "42"
	cfg.Schedule.DigestCron = digest
	return cfg
}

func TestStartTelegram_Disabled(t *testing.T) {
	stop, err := startTelegram(context.Background(), &config.Config{}, idleDashboard{}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, stop)
	stop()
}

func TestStartTelegram_BadDigestIsWrapped(t *testing.T) {
	stop, err := startTelegram(context.Background(), telegramConfig("every day"), idleDashboard{}, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, stop)
	assert.Contains(t, err.Error(), "register digest")
}

func TestStartTelegram_StartsAndStops(t *testing.T) {
	// cancelled up front so polling returns without touching the network
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stop, err := startTelegram(ctx, telegramConfig("0 0 9 * * *"), idleDashboard{}, zap.NewNop())
	require.NoError(t, err)
	stop()
}
