package strategy

import (
	"context"
	"fmt"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/ta"
	"signal-trading-bot/internal/types"
)

// DetectCrossover classifies the last step of short-long. A zero difference on
// either side is never a cross.
func DetectCrossover(short, long []float64) (types.Cross, error) {
	if len(short) < 2 || len(long) < 2 {
		return types.NoCross, fmt.Errorf("crossover needs 2 points per series, have %d and %d: %w",
			len(short), len(long), types.ErrInsufficientData)
	}
	prevDiff := short[len(short)-2] - long[len(long)-2]
	currDiff := short[len(short)-1] - long[len(long)-1]

	switch {
	case prevDiff < 0 && currDiff > 0:
		return types.GoldenCross, nil
	case prevDiff > 0 && currDiff < 0:
		return types.DeathCross, nil
	default:
		return types.NoCross, nil
	}
}

// CrossoverStrategy buys on a golden cross and sells on a death cross of two EMAs.
type CrossoverStrategy struct {
	shortPeriod int
	longPeriod  int
}

var _ interfaces.Strategy = (*CrossoverStrategy)(nil)

func NewCrossoverStrategy(p Params) *CrossoverStrategy {
	return &CrossoverStrategy{shortPeriod: p.ShortEMAPeriod, longPeriod: p.LongEMAPeriod}
}

func (s *CrossoverStrategy) Name() string { return NameCrossover }

// Lookback covers two fully warmed values of the long EMA.
func (s *CrossoverStrategy) Lookback() int {
	return s.longPeriod + 1
}

func (s *CrossoverStrategy) Evaluate(ctx context.Context, candles []types.Candle) (types.Verdict, error) {
	closes := ta.ClosingPrices(candles)

	shortEMA, err := ta.EMA(closes, s.shortPeriod)
	if err != nil {
		return types.HoldVerdict(s.Name(), "short EMA unavailable"), fmt.Errorf("short EMA: %w", err)
	}
	longEMA, err := ta.EMA(closes, s.longPeriod)
	if err != nil {
		return types.HoldVerdict(s.Name(), "long EMA unavailable"), fmt.Errorf("long EMA: %w", err)
	}

	cross, err := DetectCrossover(shortEMA, longEMA)
	if err != nil {
		return types.HoldVerdict(s.Name(), "crossover unavailable"), err
	}

	v := types.Verdict{
		Cross:    cross,
		Strategy: s.Name(),
		Values: map[string]float64{
			"short_ema":      shortEMA[len(shortEMA)-1],
			"long_ema":       longEMA[len(longEMA)-1],
			"prev_short_ema": shortEMA[len(shortEMA)-2],
			"prev_long_ema":  longEMA[len(longEMA)-2],
			"close":          closes[len(closes)-1],
		},
	}
	switch cross {
	case types.GoldenCross:
		v.Action, v.Reason = types.ActionBuy, "short EMA crossed above long EMA"
	case types.DeathCross:
		v.Action, v.Reason = types.ActionSell, "short EMA crossed below long EMA"
	default:
		v.Action, v.Reason = types.ActionHold, "no crossover"
	}
	return v, nil
}
