package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

type Strategy interface {
	Name() string
	// Lookback is the number of candles Evaluate needs.
	Lookback() int
	Evaluate(ctx context.Context, candles []types.Candle) (types.Verdict, error)
}
