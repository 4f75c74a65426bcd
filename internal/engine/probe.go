package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

// ErrProbeExhausted is returned when no quantity in the probe range was accepted.
var ErrProbeExhausted = errors.New("probe exhausted without an accepted order")

type ProbeRequest struct {
	Pair        string
	Side        types.Action
	Start       float64
	Step        float64
	MaxAttempts int
}

type ProbeResult struct {
	Qty      float64
	Attempts int
	Order    types.OrderResult
}

// ProbeMinQty submits orders of increasing size until the exchange accepts
// one, trying at most MaxAttempts quantities start, start+step, ...
// Transport errors stop the probe; only rejections advance it. Each attempt
// carries a fresh link ID since the exchange refuses a reused one.
func ProbeMinQty(ctx context.Context, ex interfaces.Exchange, req ProbeRequest) (ProbeResult, error) {
	if req.Step <= 0 || req.MaxAttempts < 1 || req.Start < 0 {
		return ProbeResult{}, fmt.Errorf("probe step %v, attempts %d, start %v: %w",
			req.Step, req.MaxAttempts, req.Start, types.ErrInvalidInput)
	}
	if req.Side != types.ActionBuy && req.Side != types.ActionSell {
		return ProbeResult{}, fmt.Errorf("probe side %q: %w", req.Side, types.ErrInvalidInput)
	}

	for i := 0; i < req.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return ProbeResult{Attempts: i}, upstream("probe", err)
		}
		qty := roundTo(req.Start+float64(i)*req.Step, maxDecimals)
		if qty <= 0 {
			continue
		}

		res, err := ex.SubmitOrder(ctx, types.OrderIntent{
			Pair:   req.Pair,
			Side:   req.Side,
			Qty:    qty,
			LinkID: uuid.NewString(),
		})
		if err != nil {
			return ProbeResult{Qty: qty, Attempts: i + 1}, upstream("probe submit", err)
		}
		if res.Success {
			logger.Info(ctx, "Minimum accepted quantity found", "pair", req.Pair, "side", req.Side, "qty", qty, "attempts", i+1)
			return ProbeResult{Qty: qty, Attempts: i + 1, Order: res}, nil
		}
		logger.Debug(ctx, "Probe quantity rejected", "pair", req.Pair, "qty", qty, "attempt", i+1, "message", res.Message)
	}
	return ProbeResult{Attempts: req.MaxAttempts}, fmt.Errorf("%s after %d attempts: %w", req.Pair, req.MaxAttempts, ErrProbeExhausted)
}
