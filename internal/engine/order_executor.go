package engine

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

// orderExecutor owns the single SubmitOrder call of a cycle.
type orderExecutor struct {
	exchange interfaces.Exchange
}

func newOrderExecutor(exchange interfaces.Exchange) *orderExecutor {
	return &orderExecutor{exchange: exchange}
}

// submit sends the intent exactly once. Rejections and transport errors are
// returned to the caller as is; the next tick is the retry.
func (oe *orderExecutor) submit(ctx context.Context, intent types.OrderIntent) (types.OrderResult, error) {
	res, err := oe.exchange.SubmitOrder(ctx, intent)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to submit order", err,
			"pair", intent.Pair,
			"side", intent.Side,
			"qty", intent.Qty,
			"link_id", intent.LinkID,
		)
		return types.OrderResult{}, upstream("submit order", err)
	}
	if !res.Success {
		logger.Warn(ctx, "Order rejected by exchange",
			"pair", intent.Pair,
			"side", intent.Side,
			"qty", intent.Qty,
			"link_id", intent.LinkID,
			"message", res.Message,
		)
		return res, nil
	}

	logger.Order(ctx, intent.Pair, string(intent.Side), intent.Qty, intent.Price, res.OrderID,
		"link_id", intent.LinkID,
		"status", res.Status,
		"take_profit", intent.TakeProfit,
		"stop_loss", intent.StopLoss,
	)
	return res, nil
}
