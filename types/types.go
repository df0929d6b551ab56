package types

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// PriceMode selects how the order price is interpreted by the gateway.
type PriceMode string

const (
	Market PriceMode = "MARKET"
	Limit  PriceMode = "LIMIT"
)

// PriceBar is one OHLCV aggregate. Fetched windows are ordered
// newest-first: bars[0] is the most recent bar.
type PriceBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Quote is the latest live tick for a code.
type Quote struct {
	Code      string
	Name      string
	Price     float64
	ChangeAbs float64
	ChangePct float64
	Volume    float64
}

// Candidate is a stock surfaced by a condition search. The Base*
// fields are fixed at first detection and never overwritten by later
// refreshes; only the quote fields move.
type Candidate struct {
	Code          string
	Name          string
	Price         float64
	ChangeAbs     float64
	ChangePct     float64
	Volume        float64
	Condition     string
	DetectedAt    time.Time
	BasePrice     float64
	BaseChangePct float64
}

// DriftSinceDetection is the relative move of the live price against
// the price recorded when the candidate was first detected, as a
// percentage. Returns 0 when the baseline is unusable.
func (c *Candidate) DriftSinceDetection() float64 {
	if c.BasePrice <= 0 {
		return 0
	}
	return (c.Price - c.BasePrice) / c.BasePrice * 100
}

// Holding is an open position. MaxProfitPct is monotonically
// non-decreasing and anchors the trailing stop.
type Holding struct {
	Code         string
	Name         string
	Qty          int64
	AvgCost      float64
	Price        float64
	ProfitPct    float64
	MaxProfitPct float64
}

// UpdatePrice recomputes the profit fields from a fresh price.
func (h *Holding) UpdatePrice(price float64) {
	if price <= 0 || h.AvgCost <= 0 {
		return
	}
	h.Price = price
	h.ProfitPct = (price - h.AvgCost) / h.AvgCost * 100
	if h.ProfitPct > h.MaxProfitPct {
		h.MaxProfitPct = h.ProfitPct
	}
}

// Order is what the engine hands to the order gateway. The engine
// never reads order state back except through OrderResult.
type Order struct {
	Code    string
	Side    Side
	Qty     int64
	Price   float64
	Mode    PriceMode
	Account string
	Comment string
}

type OrderResult struct {
	OrderID string
	Success bool
	Message string
}

// SearchResult is the outcome of one condition search.
type SearchResult struct {
	Success    bool
	Conditions []string
	Stocks     []Quote
}
