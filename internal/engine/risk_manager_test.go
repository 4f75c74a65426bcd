package engine

import (
	"errors"
	"math"
	"testing"

	"signal-trading-bot/internal/types"
)

func TestSizePosition(t *testing.T) {
	qty, err := SizePosition(1000, 1, 0.5, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if qty != 10 {
		t.Errorf("Expected 10, got %v", qty)
	}

	wide, _ := SizePosition(1000, 1, 5, 2)
	if wide >= qty {
		t.Errorf("Expected wider ATR to shrink the position, got %v >= %v", wide, qty)
	}
}

func TestSizePositionErrors(t *testing.T) {
	tests := []struct {
		name                     string
		balance, risk, atr, mult float64
		want                     error
	}{
		{"zero atr", 1000, 1, 0, 2, types.ErrDivisionByZero},
		{"negative atr", 1000, 1, -1, 2, types.ErrDivisionByZero},
		{"nan atr", 1000, 1, math.NaN(), 2, types.ErrDivisionByZero},
		{"zero multiplier", 1000, 1, 1, 0, types.ErrInvalidInput},
		{"negative balance", -1, 1, 1, 2, types.ErrInvalidInput},
		{"risk over 100", 1000, 101, 1, 2, types.ErrInvalidInput},
		{"zero risk", 1000, 0, 1, 2, types.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SizePosition(tt.balance, tt.risk, tt.atr, tt.mult)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNormalizeQty(t *testing.T) {
	rules := types.TradingRules{MinOrderQty: 1, QtyStep: 0.1}
	tests := []struct {
		name string
		in   float64
		want float64
		err  bool
	}{
		{"floors to step", 12.37, 12.3, false},
		{"exact multiple", 0.3 / 0.1, 3, false},
		{"below minimum", 0.95, 0, true},
		{"zero", 0, 0, true},
		{"infinite", math.Inf(1), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeQty(tt.in, rules)
			if tt.err {
				if !errors.Is(err, types.ErrInvalidInput) {
					t.Errorf("Expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNormalizeQtyWithoutStep(t *testing.T) {
	got, err := NormalizeQty(1.123456789, types.TradingRules{})
	if err != nil {
		t.Fatal(err)
	}
	if got != 1.12345678 {
		t.Errorf("Expected 8 decimal floor, got %v", got)
	}
}

func TestProtectivePrices(t *testing.T) {
	sm := newStopManager(0.001, 0.0005)

	tp, sl := sm.protectivePrices(types.ActionBuy, 0.5, 0.0001)
	if tp != 0.5005 || sl != 0.4998 {
		t.Errorf("BUY: expected 0.5005/0.4998, got %v/%v", tp, sl)
	}
	tp, sl = sm.protectivePrices(types.ActionSell, 0.5, 0.0001)
	if tp != 0.4995 || sl != 0.5002 {
		t.Errorf("SELL: expected 0.4995/0.5002, got %v/%v", tp, sl)
	}
	if tp, sl = sm.protectivePrices(types.ActionHold, 0.5, 0.0001); tp != 0 || sl != 0 {
		t.Errorf("HOLD: expected no levels, got %v/%v", tp, sl)
	}
}

func TestProtectivePricesZeroPercentLeavesLevelUnset(t *testing.T) {
	sm := newStopManager(0, 0.0005)
	tp, sl := sm.protectivePrices(types.ActionBuy, 0.5, 0.0001)
	if tp != 0 {
		t.Errorf("Expected no take-profit, got %v", tp)
	}
	if sl != 0.4998 {
		t.Errorf("Expected stop-loss 0.4998, got %v", sl)
	}
}
