package ta

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"signal-trading-bot/internal/types"
)

func candle(o, h, l, c float64) types.Candle {
	return types.Candle{Open: o, High: h, Low: l, Close: c, Volume: 1}
}

func sampleCandles() []types.Candle {
	return []types.Candle{
		candle(10, 10.5, 9.5, 10),
		candle(10, 12, 9, 11),
		candle(11, 11.5, 10.5, 11),
		candle(11, 15, 11, 14),
	}
}

func TestSMA(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != 4 {
		t.Errorf("Expected SMA 4, got %f", got)
	}

	if _, err := SMA([]float64{1, 2}, 3); !errors.Is(err, types.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
	if _, err := SMA([]float64{1, 2}, 0); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero period, got %v", err)
	}
}

func TestEMA(t *testing.T) {
	got, err := EMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []float64{2, 3, 4}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("EMA mismatch (-want +got):\n%s", diff)
	}
}

func TestEMALengthAndSeed(t *testing.T) {
	closes := []float64{3, 7, 1, 9, 4, 6, 2, 8, 5, 10, 11, 4}
	for period := 1; period <= len(closes); period++ {
		got, err := EMA(closes, period)
		if err != nil {
			t.Fatalf("period %d: unexpected error %v", period, err)
		}
		if len(got) != len(closes)-period+1 {
			t.Errorf("period %d: Expected length %d, got %d", period, len(closes)-period+1, len(got))
		}
		seed := 0.0
		for _, c := range closes[:period] {
			seed += c
		}
		seed /= float64(period)
		if math.Abs(got[0]-seed) > 1e-9 {
			t.Errorf("period %d: Expected seed %f, got %f", period, seed, got[0])
		}
	}

	if _, err := EMA(closes, len(closes)+1); !errors.Is(err, types.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestRSI(t *testing.T) {
	got, err := RSI([]float64{1, 2, 3, 2, 3}, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []float64{100, 50, 75}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("RSI mismatch (-want +got):\n%s", diff)
	}

	flat, err := RSI([]float64{5, 5, 5, 5}, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if flat[0] != 50 {
		t.Errorf("Expected flat series RSI 50, got %f", flat[0])
	}

	if _, err := RSI([]float64{1, 2, 3}, 3); !errors.Is(err, types.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData with P closes, got %v", err)
	}
}

func TestRSIBounded(t *testing.T) {
	closes := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1, 45.9, 46.2, 45.6, 46.3, 46.3, 46.0, 46.4, 46.2}
	got, err := RSI(closes, 14)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != len(closes)-14 {
		t.Errorf("Expected %d values, got %d", len(closes)-14, len(got))
	}
	for i, v := range got {
		if v < 0 || v > 100 {
			t.Errorf("RSI[%d] out of bounds: %f", i, v)
		}
	}
}

func TestTrueRangeAndATR(t *testing.T) {
	cs := sampleCandles()
	if diff := cmp.Diff([]float64{3, 1, 4}, TrueRange(cs)); diff != "" {
		t.Errorf("TrueRange mismatch (-want +got):\n%s", diff)
	}

	atr, err := ATR(cs, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if atr != 2.5 {
		t.Errorf("Expected ATR 2.5, got %f", atr)
	}

	if _, err := ATR(cs, 4); !errors.Is(err, types.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
	if got := TrueRange(nil); len(got) != 0 {
		t.Errorf("Expected empty true range for nil input, got %v", got)
	}
}

func TestSanitize(t *testing.T) {
	got, err := Sanitize(nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Expected empty result for nil candles, got %v, %v", got, err)
	}

	bad := sampleCandles()
	bad[2].High = math.NaN()
	got, err = Sanitize(bad)
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected malformed input to yield zero candles, got %d", len(got))
	}

	inverted := []types.Candle{candle(10, 9, 11, 10)}
	if _, err := Sanitize(inverted); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for high < low, got %v", err)
	}

	ok := sampleCandles()
	got, err = Sanitize(ok)
	if err != nil || len(got) != len(ok) {
		t.Errorf("Expected valid candles to pass through, got %d, %v", len(got), err)
	}
}

func TestClosingPrices(t *testing.T) {
	if diff := cmp.Diff([]float64{10, 11, 11, 14}, ClosingPrices(sampleCandles())); diff != "" {
		t.Errorf("ClosingPrices mismatch (-want +got):\n%s", diff)
	}
	if got := ClosingPrices(nil); len(got) != 0 {
		t.Errorf("Expected no closes, got %v", got)
	}
}
