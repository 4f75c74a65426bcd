package exchangeobs

import (
	"context"
	"errors"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/metrics"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

// observableExchange wraps an Exchange with logging, tracing and request metrics
type observableExchange struct {
	exchange interfaces.Exchange
}

// Compile-time interface check
var (
	_ interfaces.Exchange          = (*observableExchange)(nil)
	_ interfaces.ConnectionChecker = (*observableExchange)(nil)
)

// Wrap wraps an exchange with observability middleware
func Wrap(exchange interfaces.Exchange) interfaces.Exchange {
	return &observableExchange{
		exchange: exchange,
	}
}

func record(op string, err error) {
	metrics.ExchangeRequestsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
}

func (oe *observableExchange) FetchCandles(ctx context.Context, pair string, limit int, timeframe string) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.FetchCandles")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching candles", "pair", pair, "limit", limit, "timeframe", timeframe)

	candles, err := oe.exchange.FetchCandles(ctx, pair, limit, timeframe)
	record("fetch_candles", err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "pair", pair, "limit", limit)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched successfully", "pair", pair, "count", len(candles))
	return candles, nil
}

func (oe *observableExchange) FetchCurrentPrice(ctx context.Context, pair string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.FetchCurrentPrice")
	defer span.End()

	price, err := oe.exchange.FetchCurrentPrice(ctx, pair)
	record("fetch_price", err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price", err, "pair", pair)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Price fetched successfully", "pair", pair, "price", price)
	return price, nil
}

func (oe *observableExchange) FetchAccountBalance(ctx context.Context, coin string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.FetchAccountBalance")
	defer span.End()

	bal, err := oe.exchange.FetchAccountBalance(ctx, coin)
	record("fetch_balance", err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch balance", err, "coin", coin)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Balance fetched successfully", "coin", coin, "balance", bal)
	return bal, nil
}

func (oe *observableExchange) FetchTradingRules(ctx context.Context, pair string) (types.TradingRules, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.FetchTradingRules")
	defer span.End()

	rules, err := oe.exchange.FetchTradingRules(ctx, pair)
	record("fetch_rules", err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch trading rules", err, "pair", pair)
		return types.TradingRules{}, err
	}

	logger.DebugSkip(ctx, 1, "Trading rules fetched",
		"pair", pair,
		"min_order_qty", rules.MinOrderQty,
		"qty_step", rules.QtyStep,
		"min_order_amt", rules.MinOrderAmt,
		"tick_size", rules.TickSize,
	)
	return rules, nil
}

// SubmitOrder places an order with observability
func (oe *observableExchange) SubmitOrder(ctx context.Context, intent types.OrderIntent) (types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.SubmitOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"pair", intent.Pair,
		"side", intent.Side,
		"qty", intent.Qty,
		"take_profit", intent.TakeProfit,
		"stop_loss", intent.StopLoss,
		"link_id", intent.LinkID,
	)

	res, err := oe.exchange.SubmitOrder(ctx, intent)
	record("submit_order", err)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues(string(intent.Side), "error").Inc()
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"pair", intent.Pair,
			"side", intent.Side,
			"qty", intent.Qty,
		)
		return types.OrderResult{}, err
	}

	status := res.Status
	if status == "" {
		status = "UNKNOWN"
	}
	metrics.OrdersTotal.WithLabelValues(string(intent.Side), status).Inc()
	if res.Success {
		metrics.LastOrderQty.Set(intent.Qty)
	}

	logger.InfoSkip(ctx, 1, "Order placed",
		"pair", intent.Pair,
		"success", res.Success,
		"order_id", res.OrderID,
		"status", res.Status,
		"message", res.Message,
	)
	return res, nil
}

// CheckConnection delegates to the wrapped exchange when it supports the check.
func (oe *observableExchange) CheckConnection(ctx context.Context) (string, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.CheckConnection")
	defer span.End()

	cc, ok := oe.exchange.(interfaces.ConnectionChecker)
	if !ok {
		return "", errors.New("exchange does not support connection checks")
	}
	desc, err := cc.CheckConnection(ctx)
	record("check_connection", err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Connection test failed", err)
		return "", err
	}
	logger.InfoSkip(ctx, 1, "Connection test passed", "key", desc)
	return desc, nil
}
