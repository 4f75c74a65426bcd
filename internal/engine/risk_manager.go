package engine

import (
	"context"
	"fmt"

	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

// SizePosition converts a risk budget into a quantity:
//
//	qty = (balance * riskPct/100) / (atr * multiplier)
//
// A wider ATR yields a smaller position. The result is always finite.
func SizePosition(balance, riskPct, atr, multiplier float64) (float64, error) {
	if !finite(atr) || atr <= 0 {
		return 0, fmt.Errorf("ATR %v: %w", atr, types.ErrDivisionByZero)
	}
	if !finite(multiplier) || multiplier <= 0 {
		return 0, fmt.Errorf("scaling multiplier %v must be positive: %w", multiplier, types.ErrInvalidInput)
	}
	if !finite(balance) || balance < 0 {
		return 0, fmt.Errorf("balance %v must be non-negative: %w", balance, types.ErrInvalidInput)
	}
	if !finite(riskPct) || riskPct <= 0 || riskPct > 100 {
		return 0, fmt.Errorf("risk per trade %v must be in (0, 100]: %w", riskPct, types.ErrInvalidInput)
	}

	qty := (balance * riskPct / 100) / (atr * multiplier)
	if !finite(qty) {
		return 0, fmt.Errorf("sized quantity overflowed: %w", types.ErrInvalidInput)
	}
	return qty, nil
}

// NormalizeQty floors qty to the exchange step and rejects anything below the
// minimum order size. It never rounds up past the risk budget.
func NormalizeQty(qty float64, rules types.TradingRules) (float64, error) {
	if !finite(qty) || qty <= 0 {
		return 0, fmt.Errorf("quantity %v must be positive: %w", qty, types.ErrInvalidInput)
	}
	n := floorToStep(qty, rules.QtyStep)
	if n <= 0 {
		return 0, fmt.Errorf("quantity %v rounds to zero at step %v: %w", qty, rules.QtyStep, types.ErrInvalidInput)
	}
	if n < rules.MinOrderQty {
		return 0, fmt.Errorf("quantity %v below minimum order qty %v: %w", n, rules.MinOrderQty, types.ErrInvalidInput)
	}
	return n, nil
}

// riskManager sizes one order from balance, volatility and exchange rules.
type riskManager struct {
	riskPerTrade  float64
	scalingFactor float64
	buyMode       string
}

func newRiskManager(riskPerTrade, scalingFactor float64, buyMode string) *riskManager {
	return &riskManager{riskPerTrade: riskPerTrade, scalingFactor: scalingFactor, buyMode: buyMode}
}

// quantity returns the normalized order size. balance is expressed in base units.
func (rm *riskManager) quantity(ctx context.Context, pair string, side types.Action, balance, atr, price float64, rules types.TradingRules) (float64, error) {
	var (
		raw float64
		err error
	)
	if side == types.ActionBuy && rm.buyMode == BuyModeMinOrder {
		if rules.MinOrderQty <= 0 {
			return 0, fmt.Errorf("exchange reported no minimum order qty: %w", types.ErrInvalidInput)
		}
		raw = rules.MinOrderQty
	} else {
		raw, err = SizePosition(balance, rm.riskPerTrade, atr, rm.scalingFactor)
		if err != nil {
			logger.Risk(ctx, pair, "SIZING_FAILED", "side", side, "balance", balance, "atr", atr, "error", err)
			return 0, err
		}
	}

	qty, err := NormalizeQty(raw, rules)
	if err != nil {
		logger.Risk(ctx, pair, "QTY_BELOW_MINIMUM",
			"side", side,
			"raw_qty", raw,
			"min_order_qty", rules.MinOrderQty,
			"qty_step", rules.QtyStep,
			"balance", balance,
			"atr", atr,
		)
		return 0, err
	}

	if rules.MinOrderAmt > 0 && qty*price < rules.MinOrderAmt {
		logger.Risk(ctx, pair, "NOTIONAL_BELOW_MINIMUM", "side", side, "qty", qty, "price", price, "min_order_amt", rules.MinOrderAmt)
		return 0, fmt.Errorf("order value %v below minimum %v: %w", qty*price, rules.MinOrderAmt, types.ErrInvalidInput)
	}

	logger.Debug(ctx, "Position sized",
		"pair", pair,
		"side", side,
		"balance", balance,
		"atr", atr,
		"raw_qty", raw,
		"qty", qty,
		"buy_mode", rm.buyMode,
	)
	return qty, nil
}
