package ta

import (
	"fmt"
	"math"

	"signal-trading-bot/internal/types"
)

// Sanitize treats a nil, empty or malformed candle sequence as zero-length input.
func Sanitize(candles []types.Candle) ([]types.Candle, error) {
	if len(candles) == 0 {
		return []types.Candle{}, nil
	}
	for i, c := range candles {
		if !c.Valid() {
			return []types.Candle{}, fmt.Errorf("candle %d (ts=%d): %w", i, c.Ts, types.ErrInvalidInput)
		}
	}
	return candles, nil
}

func ClosingPrices(candles []types.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

func checkPeriod(n, period, need int) error {
	if period <= 0 {
		return fmt.Errorf("period %d: %w", period, types.ErrInvalidInput)
	}
	if n < need {
		return fmt.Errorf("need %d values for period %d, have %d: %w", need, period, n, types.ErrInsufficientData)
	}
	return nil
}

// SMA is the mean of the last n closes.
func SMA(closes []float64, n int) (float64, error) {
	if err := checkPeriod(len(closes), n, n); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n), nil
}

// EMA returns len(closes)-period+1 values seeded with the SMA of the first period closes.
func EMA(closes []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(closes), period, period); err != nil {
		return nil, err
	}
	seed := 0.0
	for _, c := range closes[:period] {
		seed += c
	}
	seed /= float64(period)

	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(closes)-period+1)
	out = append(out, seed)
	prev := seed
	for _, c := range closes[period:] {
		prev = c*k + prev*(1-k)
		out = append(out, prev)
	}
	return out, nil
}

// RSI uses Wilder smoothing. The first value covers closes[0:period+1], so the
// result has len(closes)-period values.
func RSI(closes []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(closes), period, period+1); err != nil {
		return nil, err
	}
	gain, loss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiValue(avgGain, avgLoss))
	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*(p-1) + g) / p
		avgLoss = (avgLoss*(p-1) + l) / p
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// TrueRange returns one value per candle after the first.
func TrueRange(candles []types.Candle) []float64 {
	if len(candles) < 2 {
		return []float64{}
	}
	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		c, prevClose := candles[i], candles[i-1].Close
		tr := math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
		trs = append(trs, tr)
	}
	return trs
}

// ATR is the plain mean of the last period true ranges.
func ATR(candles []types.Candle, period int) (float64, error) {
	if err := checkPeriod(len(candles), period, period+1); err != nil {
		return 0, err
	}
	trs := TrueRange(candles)
	sum := 0.0
	for _, v := range trs[len(trs)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}
