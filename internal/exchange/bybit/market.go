package bybit

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/tidwall/gjson"

	"signal-trading-bot/internal/types"
)

// maxKlineLimit is the largest page the kline endpoint serves.
const maxKlineLimit = 1000

// FetchCandles returns up to limit candles in ascending time order.
func (c *Client) FetchCandles(ctx context.Context, pair string, limit int, timeframe string) ([]types.Candle, error) {
	iv, err := Interval(timeframe)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, fmt.Errorf("candle limit %d: %w", limit, types.ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("category", c.cfg.Category)
	q.Set("symbol", Symbol(pair))
	q.Set("interval", iv)
	q.Set("limit", strconv.Itoa(min(limit, maxKlineLimit)))

	res, err := c.public(ctx, "fetch candles", "/v5/market/kline", q)
	if err != nil {
		return nil, err
	}
	return ParseKlines(res.Get("list").Array())
}

// ParseKlines converts kline rows [start, open, high, low, close, volume, turnover]
// from newest-first to ascending candles.
func ParseKlines(rows []gjson.Result) ([]types.Candle, error) {
	candles := make([]types.Candle, 0, len(rows))
	for i, row := range rows {
		f := row.Array()
		if len(f) < 6 {
			return nil, fmt.Errorf("kline row %d has %d fields: %w", i, len(f), types.ErrUpstream)
		}
		candles = append(candles, types.Candle{
			Ts:     f[0].Int(),
			Open:   f[1].Float(),
			High:   f[2].Float(),
			Low:    f[3].Float(),
			Close:  f[4].Float(),
			Volume: f[5].Float(),
		})
	}
	slices.Reverse(candles)
	return candles, nil
}

func (c *Client) FetchCurrentPrice(ctx context.Context, pair string) (float64, error) {
	q := url.Values{}
	q.Set("category", c.cfg.Category)
	q.Set("symbol", Symbol(pair))

	res, err := c.public(ctx, "fetch price", "/v5/market/tickers", q)
	if err != nil {
		return 0, err
	}
	last := res.Get("list.0.lastPrice")
	if !last.Exists() || last.Float() <= 0 {
		return 0, fmt.Errorf("no last price for %s: %w", Symbol(pair), types.ErrUpstream)
	}
	return last.Float(), nil
}

func (c *Client) FetchTradingRules(ctx context.Context, pair string) (types.TradingRules, error) {
	q := url.Values{}
	q.Set("category", c.cfg.Category)
	q.Set("symbol", Symbol(pair))

	res, err := c.public(ctx, "fetch trading rules", "/v5/market/instruments-info", q)
	if err != nil {
		return types.TradingRules{}, err
	}
	inst := res.Get("list.0")
	if !inst.Exists() {
		return types.TradingRules{}, fmt.Errorf("unknown instrument %s: %w", Symbol(pair), types.ErrUpstream)
	}
	return ParseTradingRules(inst), nil
}

// ParseTradingRules reads lot and price filters. Spot instruments report
// minOrderAmt while derivatives report minNotionalValue.
func ParseTradingRules(inst gjson.Result) types.TradingRules {
	lot := inst.Get("lotSizeFilter")
	amt := lot.Get("minOrderAmt")
	if !amt.Exists() {
		amt = lot.Get("minNotionalValue")
	}
	step := lot.Get("qtyStep")
	if !step.Exists() {
		step = lot.Get("basePrecision")
	}
	return types.TradingRules{
		MinOrderQty: lot.Get("minOrderQty").Float(),
		QtyStep:     step.Float(),
		MinOrderAmt: amt.Float(),
		TickSize:    inst.Get("priceFilter.tickSize").Float(),
	}
}
