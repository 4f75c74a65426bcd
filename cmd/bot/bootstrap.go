package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"signal-trading-bot/internal/engine"
	"signal-trading-bot/internal/engine/engineobs"
	"signal-trading-bot/internal/exchange/bybit"
	"signal-trading-bot/internal/exchange/exchangeobs"
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/strategy"
	"signal-trading-bot/internal/strategy/strategyobs"
	"signal-trading-bot/internal/trace"
)

const version = "1.0.0"

// initializeSystem loads .env and initializes the logger
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initializeTracer is best effort; the bot runs without spans if it fails.
func initializeTracer(cfg *store.Config) {
	if err := trace.Init(cfg.ServiceName, version); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeExchange builds the Bybit client with observability. Credentials
// come from the environment only.
func initializeExchange(ctx context.Context, cfg *store.Config) interfaces.Exchange {
	ex := bybit.New(bybit.ConfigFromStore(cfg, cfg.Mode == "DRY_RUN"))

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}
	return exchangeobs.Wrap(ex)
}

// checkConnection runs the boot-time credentials test.
func checkConnection(ctx context.Context, ex interfaces.Exchange) error {
	cc, ok := ex.(interfaces.ConnectionChecker)
	if !ok {
		return nil
	}
	if _, err := cc.CheckConnection(ctx); err != nil {
		return fmt.Errorf("failed to boot: connection test failed: %w", err)
	}
	return nil
}

func initializeStrategy(cfg *store.Config) (interfaces.Strategy, error) {
	s, err := strategy.New(cfg.Strategy.Name, strategy.Params{
		ShortEMAPeriod: cfg.Indicators.ShortEMAPeriod,
		LongEMAPeriod:  cfg.Indicators.LongEMAPeriod,
		RSIPeriod:      cfg.Indicators.RSIPeriod,
		Overbought:     cfg.Thresholds.Overbought,
		Oversold:       cfg.Thresholds.Oversold,
	})
	if err != nil {
		return nil, err
	}
	return strategyobs.Wrap(s), nil
}

func initializeEngine(cfg *store.Config, ex interfaces.Exchange, s interfaces.Strategy) interfaces.Engine {
	return engineobs.Wrap(engine.New(cfg, ex, s))
}
