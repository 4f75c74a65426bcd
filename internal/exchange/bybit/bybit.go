// Package bybit implements the exchange interface over the Bybit v5 REST API.
package bybit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"signal-trading-bot/internal/api"
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"
)

const (
	DefaultBaseURL    = "https://api.bybit.com"
	TestnetBaseURL    = "https://api-testnet.bybit.com"
	defaultRecvWindow = 5 * time.Second
)

type Config struct {
	APIKey      string
	APISecret   string
	BaseURL     string
	Category    string // linear, spot or inverse
	AccountType string
	RecvWindow  time.Duration
	Timeout     time.Duration
	// DryRun simulates order submission; market and account data stay live.
	DryRun bool
}

type Client struct {
	cfg  Config
	http *api.Client
	now  func() time.Time
}

var (
	_ interfaces.Exchange          = (*Client)(nil)
	_ interfaces.ConnectionChecker = (*Client)(nil)
)

func New(cfg Config, opts ...api.ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Category == "" {
		cfg.Category = "linear"
	}
	if cfg.AccountType == "" {
		cfg.AccountType = "UNIFIED"
	}
	if cfg.RecvWindow <= 0 {
		cfg.RecvWindow = defaultRecvWindow
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	base := []api.ClientOption{
		api.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		api.WithTimeout(cfg.Timeout),
		api.WithHeader("Accept", "application/json"),
		api.WithLogging(true),
	}
	return &Client{
		cfg:  cfg,
		http: api.NewClient(append(base, opts...)...),
		now:  time.Now,
	}
}

// Symbol converts "XRP/USDT" to the exchange symbol "XRPUSDT".
func Symbol(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(pair, "/", ""))
}

var intervals = map[string]string{
	"1m": "1", "3m": "3", "5m": "5", "15m": "15", "30m": "30",
	"1h": "60", "2h": "120", "4h": "240", "6h": "360", "12h": "720",
	"1d": "D", "1w": "W", "1M": "M",
}

// Interval maps a timeframe such as "15m" or "1d" to a kline interval.
func Interval(timeframe string) (string, error) {
	iv, ok := intervals[timeframe]
	if !ok {
		return "", fmt.Errorf("unsupported timeframe %q: %w", timeframe, types.ErrInvalidInput)
	}
	return iv, nil
}

// apiError is a well-formed response with a non-zero retCode.
type apiError struct {
	Code int64
	Msg  string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("bybit retCode %d: %s", e.Code, e.Msg)
}

func (e *apiError) Unwrap() error {
	return types.ErrUpstream
}

// decode validates the v5 envelope and returns its result object.
func decode(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("malformed response body: %w", types.ErrUpstream)
	}
	env := gjson.ParseBytes(body)
	if code := env.Get("retCode"); !code.Exists() {
		return gjson.Result{}, fmt.Errorf("response missing retCode: %w", types.ErrUpstream)
	} else if code.Int() != 0 {
		return gjson.Result{}, &apiError{Code: code.Int(), Msg: env.Get("retMsg").String()}
	}
	return env.Get("result"), nil
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrUpstream, err)
}

// public issues an unsigned GET exactly once. A failure ends the cycle; the
// next tick is the retry.
func (c *Client) public(ctx context.Context, op, path string, q url.Values) (gjson.Result, error) {
	resp, err := c.http.GET(ctx, path, q)
	if err != nil {
		return gjson.Result{}, transportErr(op, err)
	}
	res, err := decode(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// private issues a signed request exactly once.
func (c *Client) private(ctx context.Context, op, method, path string, q url.Values, body []byte) ([]byte, error) {
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return nil, fmt.Errorf("%s: missing API credentials: %w", op, types.ErrInvalidInput)
	}

	payload := string(body)
	if method == http.MethodGet {
		payload = q.Encode()
	}
	ts := c.now().UnixMilli()
	recv := c.cfg.RecvWindow.Milliseconds()

	req := api.NewRequest(method, path).
		WithContext(ctx).
		WithQuery(q).
		WithHeader(headerAPIKey, c.cfg.APIKey).
		WithHeader(headerTimestamp, fmt.Sprint(ts)).
		WithHeader(headerRecvWindow, fmt.Sprint(recv)).
		WithHeader(headerSign, sign(c.cfg.APISecret, ts, c.cfg.APIKey, recv, payload))
	if body != nil {
		req.WithRawBody(body)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportErr(op, err)
	}
	return resp.Body, nil
}
