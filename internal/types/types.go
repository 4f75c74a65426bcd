package types

import (
	"math"
	"time"
)

type Candle struct {
	Ts                             int64
	Open, High, Low, Close, Volume float64
}

// Valid reports whether every field is finite and the high/low bounds hold.
func (c Candle) Valid() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.High >= math.Max(math.Max(c.Open, c.Close), c.Low) &&
		c.Low <= math.Min(math.Min(c.Open, c.Close), c.High)
}

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

type Cross string

const (
	GoldenCross Cross = "GOLDEN_CROSS"
	DeathCross  Cross = "DEATH_CROSS"
	NoCross     Cross = "NO_CROSS"
)

// Verdict is the outcome of one strategy evaluation.
type Verdict struct {
	Action   Action             `json:"action"`
	Cross    Cross              `json:"cross,omitempty"`
	Strategy string             `json:"strategy"`
	Reason   string             `json:"reason"`
	Values   map[string]float64 `json:"values,omitempty"`
}

func HoldVerdict(strategy, reason string) Verdict {
	return Verdict{Action: ActionHold, Strategy: strategy, Reason: reason}
}

type OrderIntent struct {
	Pair       string  `json:"pair"`
	Side       Action  `json:"side"`
	Qty        float64 `json:"qty"`
	Price      float64 `json:"price"`
	TakeProfit float64 `json:"take_profit,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	LinkID     string  `json:"link_id"`
}

type OrderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"order_id,omitempty"`
	LinkID  string `json:"link_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

type TradingRules struct {
	MinOrderQty float64 `json:"min_order_qty"`
	QtyStep     float64 `json:"qty_step"`
	MinOrderAmt float64 `json:"min_order_amt"`
	TickSize    float64 `json:"tick_size"`
}

// Stage is the dispatcher state a cycle ended in.
type Stage string

const (
	StageIdle        Stage = "IDLE"
	StageEvaluating  Stage = "EVALUATING"
	StageDispatching Stage = "DISPATCHING"
	StageReporting   Stage = "REPORTING"
)

type CycleReport struct {
	CycleID   string        `json:"cycle_id"`
	Pair      string        `json:"pair"`
	Strategy  string        `json:"strategy"`
	Succeeded bool          `json:"succeeded"`
	Message   string        `json:"message"`
	Stage     Stage         `json:"stage"`
	Verdict   Verdict       `json:"verdict"`
	Intent    *OrderIntent  `json:"intent,omitempty"`
	Order     *OrderResult  `json:"order,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}
