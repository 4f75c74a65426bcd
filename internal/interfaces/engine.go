package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

type Engine interface {
	RunCycle(ctx context.Context) *types.CycleReport
}
