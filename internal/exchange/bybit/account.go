package bybit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"signal-trading-bot/internal/types"
)

// FetchAccountBalance returns the wallet balance of coin, 0 when the account
// holds none.
func (c *Client) FetchAccountBalance(ctx context.Context, coin string) (float64, error) {
	q := url.Values{}
	q.Set("accountType", c.cfg.AccountType)
	q.Set("coin", strings.ToUpper(coin))

	body, err := c.private(ctx, "fetch balance", http.MethodGet, "/v5/account/wallet-balance", q, nil)
	if err != nil {
		return 0, err
	}
	res, err := decode(body)
	if err != nil {
		return 0, fmt.Errorf("fetch balance: %w", err)
	}
	for _, cb := range res.Get("list.0.coin").Array() {
		if strings.EqualFold(cb.Get("coin").String(), coin) {
			return cb.Get("walletBalance").Float(), nil
		}
	}
	return 0, nil
}

type createOrder struct {
	Category    string `json:"category"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	Qty         string `json:"qty"`
	TakeProfit  string `json:"takeProfit,omitempty"`
	StopLoss    string `json:"stopLoss,omitempty"`
	OrderLinkID string `json:"orderLinkId,omitempty"`
}

func side(a types.Action) (string, error) {
	switch a {
	case types.ActionBuy:
		return "Buy", nil
	case types.ActionSell:
		return "Sell", nil
	default:
		return "", fmt.Errorf("order side %q: %w", a, types.ErrInvalidInput)
	}
}

func formatNum(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SubmitOrder places a market order. An exchange rejection is reported in the
// result with a nil error; only transport failures return an error.
func (c *Client) SubmitOrder(ctx context.Context, intent types.OrderIntent) (types.OrderResult, error) {
	s, err := side(intent.Side)
	if err != nil {
		return types.OrderResult{}, err
	}
	if intent.Qty <= 0 {
		return types.OrderResult{}, fmt.Errorf("order qty %v: %w", intent.Qty, types.ErrInvalidInput)
	}

	if c.cfg.DryRun {
		return types.OrderResult{
			Success: true,
			Message: "dry run: order not sent",
			OrderID: "SIM-" + intent.LinkID,
			LinkID:  intent.LinkID,
			Status:  "SIMULATED",
		}, nil
	}

	body, err := json.Marshal(createOrder{
		Category:    c.cfg.Category,
		Symbol:      Symbol(intent.Pair),
		Side:        s,
		OrderType:   "Market",
		Qty:         formatNum(intent.Qty),
		TakeProfit:  formatNum(intent.TakeProfit),
		StopLoss:    formatNum(intent.StopLoss),
		OrderLinkID: intent.LinkID,
	})
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("encode order: %w", err)
	}

	raw, err := c.private(ctx, "submit order", http.MethodPost, "/v5/order/create", nil, body)
	if err != nil {
		return types.OrderResult{}, err
	}
	res, err := decode(raw)
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return types.OrderResult{Success: false, Message: apiErr.Msg, LinkID: intent.LinkID, Status: "REJECTED"}, nil
	}
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("submit order: %w", err)
	}
	return types.OrderResult{
		Success: true,
		Message: "OK",
		OrderID: res.Get("orderId").String(),
		LinkID:  res.Get("orderLinkId").String(),
		Status:  "CREATED",
	}, nil
}

// CheckConnection verifies the API key and returns a short description of it.
func (c *Client) CheckConnection(ctx context.Context) (string, error) {
	body, err := c.private(ctx, "check connection", http.MethodGet, "/v5/user/query-api", url.Values{}, nil)
	if err != nil {
		return "", err
	}
	res, err := decode(body)
	if err != nil {
		return "", fmt.Errorf("check connection: %w", err)
	}
	access := "read-write"
	if res.Get("readOnly").Int() == 1 {
		access = "read-only"
	}
	return fmt.Sprintf("api key %s (%s)", res.Get("apiKey").String(), access), nil
}
