package engineobs

import (
	"context"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/metrics"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) RunCycle(ctx context.Context) *types.CycleReport {
	ctx, span := trace.StartSpan(ctx, "engine.RunCycle")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Starting trading cycle")

	rep := oe.engine.RunCycle(ctx)
	elapsed := time.Since(start)
	metrics.CycleDuration.Observe(elapsed.Seconds())
	metrics.CyclesTotal.WithLabelValues(outcome(rep)).Inc()

	if !rep.Succeeded {
		logger.InfoSkip(ctx, 1, "Trading cycle failed",
			"cycle_id", rep.CycleID,
			"pair", rep.Pair,
			"stage", rep.Stage,
			"message", rep.Message,
			"duration_ms", elapsed.Milliseconds(),
		)
		return rep
	}

	logger.InfoSkip(ctx, 1, "Trading cycle completed",
		"cycle_id", rep.CycleID,
		"pair", rep.Pair,
		"action", rep.Verdict.Action,
		"reason", rep.Verdict.Reason,
		"message", rep.Message,
		"duration_ms", elapsed.Milliseconds(),
	)
	return rep
}

func outcome(rep *types.CycleReport) string {
	switch {
	case !rep.Succeeded:
		return "failed"
	case rep.Order != nil:
		return "traded"
	default:
		return "held"
	}
}
