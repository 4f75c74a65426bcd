// Command probe finds the smallest order quantity the exchange accepts for
// the configured pair. It runs in DRY_RUN unless -live is passed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"signal-trading-bot/internal/engine"
	"signal-trading-bot/internal/exchange/bybit"
	"signal-trading-bot/internal/exchange/exchangeobs"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	live := flag.Bool("live", false, "Send real orders instead of simulating them")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ex := exchangeobs.Wrap(bybit.New(bybit.ConfigFromStore(cfg, !*live)))
	if !*live {
		logger.Warn(ctx, "Probe running in DRY_RUN mode - pass -live to send orders")
	}

	start := cfg.Probe.Start
	if start == 0 {
		rules, err := ex.FetchTradingRules(ctx, cfg.Trading.Pair)
		if err != nil {
			log.Fatalf("failed to fetch trading rules: %v", err)
		}
		start = rules.MinOrderQty
	}

	res, err := engine.ProbeMinQty(ctx, ex, engine.ProbeRequest{
		Pair:        cfg.Trading.Pair,
		Side:        types.Action(cfg.Probe.Side),
		Start:       start,
		Step:        cfg.Probe.Step,
		MaxAttempts: cfg.Probe.MaxAttempts,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Probe failed", err, "pair", cfg.Trading.Pair, "attempts", res.Attempts)
		os.Exit(1)
	}
	fmt.Printf("%s %s accepted at qty %v after %d attempt(s) (order %s)\n",
		cfg.Trading.Pair, cfg.Probe.Side, res.Qty, res.Attempts, res.Order.OrderID)
}
