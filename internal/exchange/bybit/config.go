package bybit

import (
	"os"
	"time"

	"signal-trading-bot/internal/store"
)

// ConfigFromStore builds a client config from config.yaml. Credentials are
// read from BYBIT_API_KEY and BYBIT_API_SECRET only.
func ConfigFromStore(cfg *store.Config, dryRun bool) Config {
	return Config{
		APIKey:      os.Getenv("BYBIT_API_KEY"),
		APISecret:   os.Getenv("BYBIT_API_SECRET"),
		BaseURL:     cfg.Exchange.BaseURL,
		Category:    cfg.Exchange.Category,
		AccountType: cfg.Exchange.AccountType,
		RecvWindow:  time.Duration(cfg.Exchange.RecvWindowMs) * time.Millisecond,
		Timeout:     time.Duration(cfg.Exchange.TimeoutSeconds) * time.Second,
		DryRun:      dryRun,
	}
}
