package engine

import "signal-trading-bot/internal/types"

// stopManager derives take-profit and stop-loss prices from the entry price.
type stopManager struct {
	tpPct float64 // fraction, 0.001 = 0.1%
	slPct float64
}

func newStopManager(tpPct, slPct float64) *stopManager {
	return &stopManager{tpPct: tpPct, slPct: slPct}
}

// protectivePrices mirrors the levels around price for the order side:
//   - BUY:  TP above, SL below
//   - SELL: TP below, SL above
//
// A zero percentage leaves that level unset.
func (sm *stopManager) protectivePrices(side types.Action, price, tick float64) (tp, sl float64) {
	switch side {
	case types.ActionBuy:
		tp = price * (1 + sm.tpPct)
		sl = price * (1 - sm.slPct)
	case types.ActionSell:
		tp = price * (1 - sm.tpPct)
		sl = price * (1 + sm.slPct)
	default:
		return 0, 0
	}
	if sm.tpPct == 0 {
		tp = 0
	} else {
		tp = roundToTick(tp, tick)
	}
	if sm.slPct == 0 {
		sl = 0
	} else {
		sl = roundToTick(sl, tick)
	}
	return tp, sl
}
