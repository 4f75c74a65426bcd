package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

// Exchange is the market data and order API a trading cycle depends on.
type Exchange interface {
	FetchCandles(ctx context.Context, pair string, limit int, timeframe string) ([]types.Candle, error)
	FetchCurrentPrice(ctx context.Context, pair string) (float64, error)
	FetchAccountBalance(ctx context.Context, coin string) (float64, error)
	SubmitOrder(ctx context.Context, intent types.OrderIntent) (types.OrderResult, error)
	FetchTradingRules(ctx context.Context, pair string) (types.TradingRules, error)
}

// ConnectionChecker is implemented by exchanges that can verify credentials at boot.
type ConnectionChecker interface {
	CheckConnection(ctx context.Context) (string, error)
}
