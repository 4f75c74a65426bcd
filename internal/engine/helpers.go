package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"signal-trading-bot/internal/types"
)

// maxDecimals bounds quantities and prices when the exchange gives no step.
const maxDecimals = 8

func roundToTick(price, tick float64) float64 {
	if tick <= 0 {
		return roundTo(price, maxDecimals)
	}
	return roundTo(math.Round(price/tick)*tick, decimalsOf(tick))
}

// floorToStep rounds down to a multiple of step. The epsilon absorbs float
// noise such as 0.3/0.1 = 2.9999999999999996.
func floorToStep(qty, step float64) float64 {
	if step <= 0 {
		p := math.Pow10(maxDecimals)
		return math.Floor(qty*p+1e-9) / p
	}
	return roundTo(math.Floor(qty/step+1e-9)*step, decimalsOf(step))
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

func decimalsOf(step float64) int {
	s := strconv.FormatFloat(step, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return min(len(s)-i-1, maxDecimals)
	}
	return 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// upstream tags collaborator errors so callers can match ErrUpstream.
func upstream(op string, err error) error {
	if errors.Is(err, types.ErrUpstream) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, types.ErrUpstream, err)
}
