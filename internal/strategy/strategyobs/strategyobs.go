package strategyobs

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/metrics"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

// observableStrategy wraps a Strategy with observability (logging, tracing & metrics)
type observableStrategy struct {
	strategy interfaces.Strategy
}

// Compile-time interface check
var _ interfaces.Strategy = (*observableStrategy)(nil)

// Wrap wraps a strategy with observability middleware
func Wrap(strategy interfaces.Strategy) interfaces.Strategy {
	return &observableStrategy{
		strategy: strategy,
	}
}

func (s *observableStrategy) Name() string {
	return s.strategy.Name()
}

func (s *observableStrategy) Lookback() int {
	return s.strategy.Lookback()
}

// Evaluate classifies the candles with observability
func (s *observableStrategy) Evaluate(ctx context.Context, candles []types.Candle) (types.Verdict, error) {
	ctx, span := trace.StartSpan(ctx, "strategy.Evaluate")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Evaluating strategy",
		"strategy", s.strategy.Name(),
		"candles", len(candles),
	)

	verdict, err := s.strategy.Evaluate(ctx, candles)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Strategy evaluation failed", err,
			"strategy", s.strategy.Name(),
			"candles", len(candles),
		)
		return verdict, err
	}

	metrics.VerdictsTotal.WithLabelValues(string(verdict.Action)).Inc()
	logger.Decision(ctx, s.strategy.Name(), string(verdict.Action), string(verdict.Cross), verdict.Reason,
		"values", verdict.Values,
	)
	return verdict, nil
}
