package strategy

import (
	"context"
	"fmt"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/ta"
	"signal-trading-bot/internal/types"
)

type ThresholdInput struct {
	Close      float64
	EMA        float64
	RSI        float64
	PrevRSI    float64
	Overbought float64
	Oversold   float64
}

// EvaluateThreshold needs trend (close vs EMA) and momentum (RSI direction) to
// agree. Buy is checked first. The sell bands include the thresholds themselves,
// so an RSI sitting exactly on overbought can only ever sell.
func EvaluateThreshold(in ThresholdInput) types.Action {
	rising := in.RSI > in.PrevRSI
	falling := in.RSI < in.PrevRSI

	if in.Close > in.EMA && in.RSI < in.Overbought && rising {
		return types.ActionBuy
	}
	if in.Close < in.EMA && (in.RSI >= in.Overbought || in.RSI <= in.Oversold) && falling {
		return types.ActionSell
	}
	return types.ActionHold
}

// ThresholdStrategy combines a single EMA trend filter with RSI thresholds.
type ThresholdStrategy struct {
	emaPeriod  int
	rsiPeriod  int
	overbought float64
	oversold   float64
}

var _ interfaces.Strategy = (*ThresholdStrategy)(nil)

func NewThresholdStrategy(p Params) *ThresholdStrategy {
	return &ThresholdStrategy{
		emaPeriod:  p.ShortEMAPeriod,
		rsiPeriod:  p.RSIPeriod,
		overbought: p.Overbought,
		oversold:   p.Oversold,
	}
}

func (s *ThresholdStrategy) Name() string { return NameThreshold }

// Lookback needs two RSI values, i.e. RSIPeriod+2 closes.
func (s *ThresholdStrategy) Lookback() int {
	return max(s.emaPeriod, s.rsiPeriod+2)
}

func (s *ThresholdStrategy) Evaluate(ctx context.Context, candles []types.Candle) (types.Verdict, error) {
	closes := ta.ClosingPrices(candles)

	ema, err := ta.EMA(closes, s.emaPeriod)
	if err != nil {
		return types.HoldVerdict(s.Name(), "EMA unavailable"), fmt.Errorf("EMA: %w", err)
	}
	rsi, err := ta.RSI(closes, s.rsiPeriod)
	if err != nil {
		return types.HoldVerdict(s.Name(), "RSI unavailable"), fmt.Errorf("RSI: %w", err)
	}
	if len(rsi) < 2 {
		return types.HoldVerdict(s.Name(), "RSI trend unavailable"),
			fmt.Errorf("RSI trend needs 2 values, have %d: %w", len(rsi), types.ErrInsufficientData)
	}

	in := ThresholdInput{
		Close:      closes[len(closes)-1],
		EMA:        ema[len(ema)-1],
		RSI:        rsi[len(rsi)-1],
		PrevRSI:    rsi[len(rsi)-2],
		Overbought: s.overbought,
		Oversold:   s.oversold,
	}
	action := EvaluateThreshold(in)

	return types.Verdict{
		Action:   action,
		Strategy: s.Name(),
		Reason:   thresholdReason(action, in),
		Values: map[string]float64{
			"close":    in.Close,
			"ema":      in.EMA,
			"rsi":      in.RSI,
			"prev_rsi": in.PrevRSI,
		},
	}, nil
}

func thresholdReason(action types.Action, in ThresholdInput) string {
	switch action {
	case types.ActionBuy:
		return "price above EMA, RSI rising below overbought"
	case types.ActionSell:
		if in.RSI >= in.Overbought {
			return "price below EMA, RSI falling from overbought"
		}
		return "price below EMA, RSI falling through oversold"
	default:
		return "no trade signal"
	}
}
