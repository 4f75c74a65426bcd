package bybit

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"

	"signal-trading-bot/internal/store"
)

func TestConfigFromStore(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "k")
	t.Setenv("BYBIT_API_SECRET", "s")

	cfg := store.Default()
	cfg.Exchange.RecvWindowMs = 7000
	got := ConfigFromStore(cfg, true)

	assert.Equal(t, Config{
		APIKey:      "k",
		APISecret:   "s",
		BaseURL:     "https://api.bybit.com",
		Category:    "linear",
		AccountType: "UNIFIED",
		RecvWindow:  7 * time.Second,
		Timeout:     10 * time.Second,
		DryRun:      true,
	}, got)
}
