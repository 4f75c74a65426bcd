package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/metrics"
	"signal-trading-bot/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	flag.Parse()

	must(initializeSystem())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx, *configPath)
	must(err)
	initializeTracer(cfg)

	ex := initializeExchange(ctx, cfg)
	must(checkConnection(ctx, ex))

	strat, err := initializeStrategy(cfg)
	must(err)
	eng := initializeEngine(cfg, ex, strat)

	var metricsSrv *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = metrics.NewServer(cfg.MetricsAddr)
		go func() {
			if err := <-metricsSrv.Start(); err != nil {
				logger.ErrorWithErr(ctx, "Metrics server stopped", err)
			}
		}()
		logger.Info(ctx, "Serving metrics", "addr", cfg.MetricsAddr)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonMode()
	_, err = scheduler.Every(cfg.PollSeconds).Seconds().StartImmediately().Do(func() {
		runCycle(ctx, eng, time.Duration(cfg.CycleTimeoutSeconds)*time.Second)
	})
	must(err)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	scheduler.StartAsync()
	logger.Info(ctx, "Bot started",
		"pair", cfg.Trading.Pair,
		"timeframe", cfg.Trading.Timeframe,
		"strategy", cfg.Strategy.Name,
		"mode", cfg.Mode,
		"poll_seconds", cfg.PollSeconds,
	)

	<-sigc
	logger.Info(ctx, "Shutting down...")
	cancel()
	scheduler.Stop()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "Failed to stop metrics server", "error", err)
		}
	}
	if err := trace.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush traces: %v\n", err)
	}
}

// runCycle bounds one cycle by timeout and prints its report as a JSON line.
func runCycle(parent context.Context, eng interfaces.Engine, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	rep := eng.RunCycle(ctx)
	b, err := json.Marshal(rep)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to encode cycle report", err)
		return
	}
	fmt.Println(string(b))
}
