package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/ta"
	"signal-trading-bot/internal/types"
)

const (
	msgNoTrade = "Trade sequence finished. No trade was made."
	msgTraded  = "Trade sequence finished. 1 trade was made."
)

// Engine runs one evaluate-then-dispatch cycle per call. It keeps no state
// between cycles; everything is re-fetched from the exchange.
type Engine struct {
	settings Settings
	exchange interfaces.Exchange
	strategy interfaces.Strategy
	risk     *riskManager
	stops    *stopManager
	orders   *orderExecutor

	newID func() string
	now   func() time.Time
}

var _ interfaces.Engine = (*Engine)(nil)

func newEngine(s Settings, ex interfaces.Exchange, strat interfaces.Strategy) *Engine {
	return &Engine{
		settings: s,
		exchange: ex,
		strategy: strat,
		risk:     newRiskManager(s.RiskPerTrade, s.ScalingFactor, s.BuyMode),
		stops:    newStopManager(s.TPPercentage, s.SLPercentage),
		orders:   newOrderExecutor(ex),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// RunCycle never returns nil and never panics on collaborator failure: every
// error ends the cycle with Succeeded=false and a message naming the step.
func (e *Engine) RunCycle(ctx context.Context) *types.CycleReport {
	start := e.now()
	rep := &types.CycleReport{
		CycleID:   e.newID(),
		Pair:      e.settings.Pair,
		Strategy:  e.strategy.Name(),
		Stage:     types.StageIdle,
		Verdict:   types.HoldVerdict(e.strategy.Name(), ""),
		StartedAt: start,
	}
	defer func() {
		rep.Duration = e.now().Sub(start)
	}()

	rep.Stage = types.StageEvaluating
	verdict, atr, err := e.evaluate(ctx)
	rep.Verdict = verdict
	if err != nil {
		return e.fail(ctx, rep, err)
	}
	if verdict.Action == types.ActionHold {
		rep.Stage = types.StageReporting
		rep.Succeeded = true
		rep.Message = msgNoTrade
		return rep
	}

	rep.Stage = types.StageDispatching
	intent, err := e.prepare(ctx, verdict.Action, atr, rep.CycleID)
	if err != nil {
		return e.fail(ctx, rep, err)
	}
	rep.Intent = &intent

	res, err := e.orders.submit(ctx, intent)
	if err != nil {
		return e.fail(ctx, rep, err)
	}
	rep.Order = &res
	rep.Stage = types.StageReporting
	if !res.Success {
		rep.Message = fmt.Sprintf("Order rejected: %s", res.Message)
		return rep
	}
	rep.Succeeded = true
	rep.Message = msgTraded
	return rep
}

func (e *Engine) fail(ctx context.Context, rep *types.CycleReport, err error) *types.CycleReport {
	logger.ErrorWithErr(ctx, "Trading cycle aborted", err,
		"cycle_id", rep.CycleID,
		"pair", rep.Pair,
		"stage", rep.Stage,
	)
	rep.Succeeded = false
	rep.Message = err.Error()
	return rep
}

// evaluate fetches candles and runs the strategy. ATR is computed from the
// same candles so dispatch does not need a second fetch.
func (e *Engine) evaluate(ctx context.Context) (types.Verdict, float64, error) {
	name := e.strategy.Name()
	limit := max(e.settings.CandleLimit, e.strategy.Lookback(), e.settings.ATRPeriod+1)

	raw, err := e.exchange.FetchCandles(ctx, e.settings.Pair, limit, e.settings.Timeframe)
	if err != nil {
		return types.HoldVerdict(name, "candles unavailable"), 0, upstream("fetch candles", err)
	}
	candles, err := ta.Sanitize(raw)
	if err != nil {
		return types.HoldVerdict(name, "malformed candles"), 0, fmt.Errorf("candles: %w", err)
	}
	logger.Debug(ctx, "Candles fetched", "pair", e.settings.Pair, "requested", limit, "received", len(candles))

	verdict, err := e.strategy.Evaluate(ctx, candles)
	if err != nil {
		return verdict, 0, fmt.Errorf("evaluate %s: %w", name, err)
	}
	if verdict.Action == types.ActionHold {
		return verdict, 0, nil
	}

	atr, err := ta.ATR(candles, e.settings.ATRPeriod)
	if err != nil {
		return verdict, 0, fmt.Errorf("atr: %w", err)
	}
	return verdict, atr, nil
}

// prepare turns a BUY or SELL verdict into a sized order intent.
func (e *Engine) prepare(ctx context.Context, side types.Action, atr float64, linkID string) (types.OrderIntent, error) {
	op := logger.StartOperation(ctx, "engine.prepare", "pair", e.settings.Pair, "side", string(side))
	intent, err := e.buildIntent(op.Context(), side, atr, linkID)
	if err != nil {
		op.EndWithError(err)
		return types.OrderIntent{}, err
	}
	op.End("qty", intent.Qty, "price", intent.Price)
	return intent, nil
}

func (e *Engine) buildIntent(ctx context.Context, side types.Action, atr float64, linkID string) (types.OrderIntent, error) {
	s := e.settings

	price, err := e.exchange.FetchCurrentPrice(ctx, s.Pair)
	if err != nil {
		return types.OrderIntent{}, upstream("fetch price", err)
	}
	if !finite(price) || price <= 0 {
		return types.OrderIntent{}, fmt.Errorf("price %v: %w", price, types.ErrInvalidInput)
	}

	rules, err := e.exchange.FetchTradingRules(ctx, s.Pair)
	if err != nil {
		return types.OrderIntent{}, upstream("fetch trading rules", err)
	}

	// SELL sizes against the base coin held; BUY converts quote funds to base units.
	var balance float64
	if side == types.ActionSell {
		if balance, err = e.exchange.FetchAccountBalance(ctx, s.BaseCoin); err != nil {
			return types.OrderIntent{}, upstream("fetch balance", err)
		}
	} else {
		quote, err := e.exchange.FetchAccountBalance(ctx, s.QuoteCoin)
		if err != nil {
			return types.OrderIntent{}, upstream("fetch balance", err)
		}
		balance = quote / price
	}

	qty, err := e.risk.quantity(ctx, s.Pair, side, balance, atr, price, rules)
	if err != nil {
		return types.OrderIntent{}, fmt.Errorf("size position: %w", err)
	}

	tp, sl := e.stops.protectivePrices(side, price, rules.TickSize)
	return types.OrderIntent{
		Pair:       s.Pair,
		Side:       side,
		Qty:        qty,
		Price:      price,
		TakeProfit: tp,
		StopLoss:   sl,
		LinkID:     linkID,
	}, nil
}
