// Package brokerage is the thin REST adapter between the engine and
// the brokerage HTTP bridge. It implements the condition-search, bar
// fetch and order submission collaborators and maps transport
// failures onto the shared error taxonomy: HTTP 429 becomes
// types.ErrRateLimited, a simulated-trading rejection becomes
// types.ErrEnvRestricted.
package brokerage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kstocklab/kats/marketdata"
	"github.com/kstocklab/kats/types"
)

const envRestrictedCode = "ENV_RESTRICTED"

type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

type searchRequest struct {
	ConditionIDs []int `json:"condition_ids"`
}

type searchResponse struct {
	Success    bool     `json:"success"`
	Conditions []string `json:"applied_conditions"`
	Stocks     []struct {
		Code       string  `json:"code"`
		Name       string  `json:"name"`
		Price      float64 `json:"price"`
		ChangeRate float64 `json:"change_rate"`
		Volume     float64 `json:"volume"`
	} `json:"stocks"`
}

// Search runs the enabled condition searches on the bridge.
func (c *Client) Search(ctx context.Context, conditionIDs []int) (types.SearchResult, error) {
	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{ConditionIDs: conditionIDs}).
		SetResult(&out).
		Post("/v1/condition-search")
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("condition search: %w", err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return types.SearchResult{}, types.ErrRateLimited
	}
	if resp.IsError() {
		return types.SearchResult{}, fmt.Errorf("condition search: status %d", resp.StatusCode())
	}

	res := types.SearchResult{Success: out.Success, Conditions: out.Conditions}
	for _, s := range out.Stocks {
		res.Stocks = append(res.Stocks, types.Quote{
			Code:      s.Code,
			Name:      s.Name,
			Price:     s.Price,
			ChangePct: s.ChangeRate,
			Volume:    s.Volume,
		})
	}
	return res, nil
}

type barsResponse struct {
	Bars []struct {
		Timestamp int64   `json:"ts"`
		Open      float64 `json:"open"`
		High      float64 `json:"high"`
		Low       float64 `json:"low"`
		Close     float64 `json:"close"`
		Volume    float64 `json:"volume"`
	} `json:"bars"`
}

// FetchBars retrieves the newest-first bar window for one code.
func (c *Client) FetchBars(ctx context.Context, code string, g marketdata.Granularity) ([]types.PriceBar, error) {
	var out barsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("code", code).
		SetQueryParam("granularity", string(g)).
		SetResult(&out).
		Get("/v1/bars")
	if err != nil {
		return nil, fmt.Errorf("fetch bars %s: %w", code, err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, types.ErrRateLimited
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch bars %s: status %d", code, resp.StatusCode())
	}

	bars := make([]types.PriceBar, 0, len(out.Bars))
	for _, b := range out.Bars {
		bars = append(bars, types.PriceBar{
			Timestamp: time.Unix(b.Timestamp, 0),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	return bars, nil
}

type orderRequest struct {
	Code      string  `json:"code"`
	Side      string  `json:"side"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	PriceMode string  `json:"price_mode"`
	Account   string  `json:"account"`
}

type orderResponse struct {
	OrderID   string `json:"order_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// Submit places an order through the bridge.
func (c *Client) Submit(ctx context.Context, o types.Order) (types.OrderResult, error) {
	if err := types.ValidateOrder(o); err != nil {
		return types.OrderResult{}, err
	}
	var out orderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(orderRequest{
			Code:      o.Code,
			Side:      string(o.Side),
			Quantity:  o.Qty,
			Price:     o.Price,
			PriceMode: string(o.Mode),
			Account:   o.Account,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/orders")
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("submit order %s: %w", o.Code, err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return types.OrderResult{}, types.ErrRateLimited
	}
	if out.ErrorCode == envRestrictedCode {
		return types.OrderResult{Message: out.Message}, types.ErrEnvRestricted
	}
	if resp.IsError() {
		return types.OrderResult{}, fmt.Errorf("submit order %s: status %d", o.Code, resp.StatusCode())
	}
	return types.OrderResult{OrderID: out.OrderID, Success: out.Success, Message: out.Message}, nil
}
