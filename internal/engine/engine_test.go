package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"signal-trading-bot/internal/types"
)

type fakeExchange struct {
	candles    []types.Candle
	candlesErr error
	price      float64
	priceErr   error
	balances   map[string]float64
	rules      types.TradingRules
	submit     func(types.OrderIntent) (types.OrderResult, error)

	submitted []types.OrderIntent
	calls     map[string]int
}

func (f *fakeExchange) hit(op string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeExchange) FetchCandles(_ context.Context, _ string, _ int, _ string) ([]types.Candle, error) {
	f.hit("candles")
	return f.candles, f.candlesErr
}

func (f *fakeExchange) FetchCurrentPrice(context.Context, string) (float64, error) {
	f.hit("price")
	return f.price, f.priceErr
}

func (f *fakeExchange) FetchAccountBalance(_ context.Context, coin string) (float64, error) {
	f.hit("balance:" + coin)
	return f.balances[coin], nil
}

func (f *fakeExchange) FetchTradingRules(context.Context, string) (types.TradingRules, error) {
	f.hit("rules")
	return f.rules, nil
}

func (f *fakeExchange) SubmitOrder(_ context.Context, intent types.OrderIntent) (types.OrderResult, error) {
	f.hit("submit")
	f.submitted = append(f.submitted, intent)
	if f.submit != nil {
		return f.submit(intent)
	}
	return types.OrderResult{Success: true, Message: "OK", OrderID: "ord-1", LinkID: intent.LinkID, Status: "New"}, nil
}

type fixedStrategy struct {
	action types.Action
	err    error
}

func (s fixedStrategy) Name() string  { return "FIXED" }
func (s fixedStrategy) Lookback() int { return 3 }
func (s fixedStrategy) Evaluate(context.Context, []types.Candle) (types.Verdict, error) {
	if s.err != nil {
		return types.HoldVerdict("FIXED", "failed"), s.err
	}
	return types.Verdict{Action: s.action, Strategy: "FIXED", Reason: "fixed"}, nil
}

// flatCandles have a constant true range of 2.
func flatCandles(n int) []types.Candle {
	cs := make([]types.Candle, n)
	for i := range cs {
		cs[i] = types.Candle{Ts: int64(i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1}
	}
	return cs
}

func testSettings() Settings {
	return Settings{
		Pair:          "XRP/USDT",
		BaseCoin:      "XRP",
		QuoteCoin:     "USDT",
		Timeframe:     "1m",
		CandleLimit:   10,
		ATRPeriod:     2,
		RiskPerTrade:  1,
		ScalingFactor: 0.5,
		TPPercentage:  0.01,
		SLPercentage:  0.005,
		BuyMode:       BuyModeRisk,
	}
}

func testExchange() *fakeExchange {
	return &fakeExchange{
		candles:  flatCandles(10),
		price:    100,
		balances: map[string]float64{"USDT": 100000, "XRP": 1000},
		rules:    types.TradingRules{MinOrderQty: 1, QtyStep: 0.1, MinOrderAmt: 5, TickSize: 0.01},
	}
}

func newTestEngine(s Settings, ex *fakeExchange, action types.Action) *Engine {
	e := newEngine(s, ex, fixedStrategy{action: action})
	e.newID = func() string { return "cycle-1" }
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e.now = func() time.Time { return clock }
	return e
}

func TestRunCycleHold(t *testing.T) {
	ex := testExchange()
	rep := newTestEngine(testSettings(), ex, types.ActionHold).RunCycle(context.Background())

	if !rep.Succeeded {
		t.Fatalf("Expected success, got %q", rep.Message)
	}
	if rep.Message != msgNoTrade {
		t.Errorf("Expected %q, got %q", msgNoTrade, rep.Message)
	}
	if rep.Stage != types.StageReporting {
		t.Errorf("Expected stage REPORTING, got %s", rep.Stage)
	}
	if ex.calls["submit"] != 0 || ex.calls["price"] != 0 {
		t.Errorf("Expected no dispatch calls on HOLD, got %v", ex.calls)
	}
	if rep.Intent != nil || rep.Order != nil {
		t.Error("Expected no intent or order on HOLD")
	}
}

func TestRunCycleBuy(t *testing.T) {
	ex := testExchange()
	rep := newTestEngine(testSettings(), ex, types.ActionBuy).RunCycle(context.Background())

	if !rep.Succeeded {
		t.Fatalf("Expected success, got %q", rep.Message)
	}
	if rep.Message != msgTraded {
		t.Errorf("Expected %q, got %q", msgTraded, rep.Message)
	}
	want := types.OrderIntent{
		Pair:       "XRP/USDT",
		Side:       types.ActionBuy,
		Qty:        10,
		Price:      100,
		TakeProfit: 101,
		StopLoss:   99.5,
		LinkID:     "cycle-1",
	}
	if len(ex.submitted) != 1 {
		t.Fatalf("Expected exactly one submission, got %d", len(ex.submitted))
	}
	if diff := cmp.Diff(want, ex.submitted[0], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("intent mismatch (-want +got):\n%s", diff)
	}
	if ex.calls["balance:USDT"] != 1 || ex.calls["balance:XRP"] != 0 {
		t.Errorf("Expected BUY to read the quote balance only, got %v", ex.calls)
	}
}

func TestRunCycleSell(t *testing.T) {
	ex := testExchange()
	rep := newTestEngine(testSettings(), ex, types.ActionSell).RunCycle(context.Background())

	if !rep.Succeeded {
		t.Fatalf("Expected success, got %q", rep.Message)
	}
	got := ex.submitted[0]
	if got.Side != types.ActionSell || got.Qty != 10 {
		t.Errorf("Expected SELL 10, got %s %v", got.Side, got.Qty)
	}
	if got.TakeProfit != 99 || got.StopLoss != 100.5 {
		t.Errorf("Expected TP 99 / SL 100.5, got %v / %v", got.TakeProfit, got.StopLoss)
	}
	if ex.calls["balance:XRP"] != 1 {
		t.Errorf("Expected SELL to read the base balance, got %v", ex.calls)
	}
}

func TestRunCycleMinOrderBuyMode(t *testing.T) {
	s := testSettings()
	s.BuyMode = BuyModeMinOrder
	ex := testExchange()
	rep := newTestEngine(s, ex, types.ActionBuy).RunCycle(context.Background())

	if !rep.Succeeded {
		t.Fatalf("Expected success, got %q", rep.Message)
	}
	if ex.submitted[0].Qty != 1 {
		t.Errorf("Expected minimum order qty 1, got %v", ex.submitted[0].Qty)
	}
}

func TestRunCycleFetchFailureSubmitsNothing(t *testing.T) {
	ex := testExchange()
	ex.candlesErr = errors.New("connection reset")
	rep := newTestEngine(testSettings(), ex, types.ActionBuy).RunCycle(context.Background())

	if rep.Succeeded {
		t.Fatal("Expected failure when candles are unavailable")
	}
	if ex.calls["submit"] != 0 {
		t.Errorf("Expected no order, got %d submissions", ex.calls["submit"])
	}
	if rep.Stage != types.StageEvaluating {
		t.Errorf("Expected stage EVALUATING, got %s", rep.Stage)
	}
	if !strings.Contains(rep.Message, "connection reset") {
		t.Errorf("Expected message to carry the cause, got %q", rep.Message)
	}
}

func TestRunCyclePriceFailure(t *testing.T) {
	ex := testExchange()
	ex.priceErr = errors.New("timeout")
	rep := newTestEngine(testSettings(), ex, types.ActionSell).RunCycle(context.Background())

	if rep.Succeeded || ex.calls["submit"] != 0 {
		t.Errorf("Expected failed cycle without order, got succeeded=%v submits=%d", rep.Succeeded, ex.calls["submit"])
	}
	if rep.Stage != types.StageDispatching {
		t.Errorf("Expected stage DISPATCHING, got %s", rep.Stage)
	}
}

func TestRunCycleStrategyError(t *testing.T) {
	ex := testExchange()
	e := newTestEngine(testSettings(), ex, types.ActionBuy)
	e.strategy = fixedStrategy{err: types.ErrInsufficientData}

	rep := e.RunCycle(context.Background())
	if rep.Succeeded || ex.calls["submit"] != 0 {
		t.Error("Expected strategy failure to abort the cycle")
	}
	if rep.Verdict.Action != types.ActionHold {
		t.Errorf("Expected HOLD verdict, got %s", rep.Verdict.Action)
	}
}

func TestRunCycleMalformedCandles(t *testing.T) {
	ex := testExchange()
	ex.candles[3].High = 50
	rep := newTestEngine(testSettings(), ex, types.ActionBuy).RunCycle(context.Background())
	if rep.Succeeded || ex.calls["submit"] != 0 {
		t.Error("Expected malformed candles to abort the cycle")
	}
}

func TestRunCycleRejectedOrderIsNotRetried(t *testing.T) {
	ex := testExchange()
	ex.submit = func(types.OrderIntent) (types.OrderResult, error) {
		return types.OrderResult{Success: false, Message: "insufficient balance"}, nil
	}
	rep := newTestEngine(testSettings(), ex, types.ActionBuy).RunCycle(context.Background())

	if rep.Succeeded {
		t.Error("Expected rejected order to fail the cycle")
	}
	if ex.calls["submit"] != 1 {
		t.Errorf("Expected one submission, got %d", ex.calls["submit"])
	}
	if rep.Order == nil || rep.Order.Message != "insufficient balance" {
		t.Errorf("Expected rejection in report, got %+v", rep.Order)
	}
}

func TestRunCycleSubmitErrorIsUpstream(t *testing.T) {
	ex := testExchange()
	ex.submit = func(types.OrderIntent) (types.OrderResult, error) {
		return types.OrderResult{}, errors.New("503")
	}
	rep := newTestEngine(testSettings(), ex, types.ActionBuy).RunCycle(context.Background())
	if rep.Succeeded || ex.calls["submit"] != 1 {
		t.Errorf("Expected one failed submission, got succeeded=%v submits=%d", rep.Succeeded, ex.calls["submit"])
	}
}

func TestRunCycleBalanceTooSmall(t *testing.T) {
	ex := testExchange()
	ex.balances["XRP"] = 10 // 10*1%/1 = 0.1 < min qty 1
	rep := newTestEngine(testSettings(), ex, types.ActionSell).RunCycle(context.Background())
	if rep.Succeeded || ex.calls["submit"] != 0 {
		t.Error("Expected undersized position to be skipped")
	}
}

func TestRunCycleIsDeterministic(t *testing.T) {
	ex := testExchange()
	e := newTestEngine(testSettings(), ex, types.ActionBuy)
	n := 0
	e.newID = func() string { n++; return strings.Repeat("x", n) }

	first := e.RunCycle(context.Background())
	second := e.RunCycle(context.Background())

	opts := cmp.Options{
		cmpopts.IgnoreFields(types.CycleReport{}, "CycleID", "StartedAt", "Duration"),
		cmpopts.IgnoreFields(types.OrderIntent{}, "LinkID"),
		cmpopts.IgnoreFields(types.OrderResult{}, "LinkID"),
	}
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Errorf("Expected identical reports for identical inputs (-first +second):\n%s", diff)
	}
	if first.CycleID == second.CycleID {
		t.Error("Expected distinct cycle IDs")
	}
}
