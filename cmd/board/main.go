package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"PriceBoard/internal/chart"
	"PriceBoard/internal/collector"
	"PriceBoard/internal/config"
	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/logging"
	"PriceBoard/internal/recorder"
	"PriceBoard/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("PriceBoard starting", zap.String("config", cfgPath))

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.Provider.Name {
	case "mock":
		fetcher = &collector.MockFetcher{Symbol: cfg.Provider.Symbol, Price: 64000}
	default:
		fetcher = collector.NewBinanceFetcher(cfg.Provider.BaseURL, cfg.Provider.Symbol, cfg.Proxy, cfg.Provider.Timeout)
	}
	log.Info("data source", zap.String("fetcher", fetcher.Name()), zap.String("symbol", cfg.Provider.Symbol))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Init chart target
	var target interface {
		chart.Target
		chart.Snapshotter
	}
	if cfg.Chart.OutputPath != "" {
		target = chart.NewFileTarget(cfg.Chart.OutputPath)
	} else {
		target = chart.NewMemoryTarget("dashboard")
	}
	charts := chart.NewManager(chart.NewPNGRenderer(cfg.Chart.Width, cfg.Chart.Height), log)

	ctrl := dashboard.NewController(fetcher, charts, target, dashboard.Options{
		Symbol:   cfg.Provider.Symbol,
		Labels:   chart.LabelFormat{Layout: cfg.Chart.LabelLayout, Location: cfg.Location()},
		Recorder: rec,
		Logger:   log,
	})

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telegram shell
	stopTelegram, err := startTelegram(ctx, cfg, ctrl, log)
	if err != nil {
		return err
	}
	defer stopTelegram()

	ctrlDone := make(chan struct{})
	go func() {
		defer close(ctrlDone)
		if err := ctrl.Run(ctx); err != nil {
			log.Error("dashboard stopped", zap.Error(err))
		}
	}()

	// HTTP shell
	srv := server.New(ctrl, target, log)
	defer srv.Close()
	go srv.Run(ctx)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	log.Info("PriceBoard is running. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping...")
	case err := <-httpErr:
		log.Error("http server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	<-ctrlDone
	log.Info("PriceBoard stopped")
	return nil
}
