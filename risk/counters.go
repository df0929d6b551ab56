package risk

import (
	"context"
	"sync"
	"time"

	"github.com/kstocklab/kats/config"
	"github.com/kstocklab/kats/store"
)

// Deny reasons returned by Counters.CanBuy, used as skip labels.
const (
	DenyMaxPositions = "max_positions"
	DenyStockCap     = "stock_trade_cap"
	DenyDailyCap     = "daily_stock_cap"
)

// Counters enforces the per-stock and per-day trade caps. Counts move
// only on a confirmed order submission, never on a skipped or rejected
// attempt, and reset when the calendar date advances.
type Counters struct {
	mu       sync.Mutex
	cfg      config.RiskConfig
	st       store.Store
	perStock map[string]int
	traded   map[string]struct{}
	date     string
	now      func() time.Time
}

func NewCounters(cfg config.RiskConfig, st store.Store) *Counters {
	return &Counters{
		cfg:      cfg,
		st:       st,
		perStock: map[string]int{},
		traded:   map[string]struct{}{},
		now:      time.Now,
	}
}

// WithClock replaces the wall clock for the daily-reset check.
func (c *Counters) WithClock(now func() time.Time) *Counters {
	c.now = now
	return c
}

// Load restores the persisted snapshot, discarding it if it belongs
// to an earlier calendar date.
func (c *Counters) Load(ctx context.Context) error {
	snap, err := c.st.Load(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	today := c.today()
	if snap.LastResetDate != today {
		c.perStock = map[string]int{}
		c.traded = map[string]struct{}{}
		c.date = today
		return nil
	}
	c.perStock = snap.PerStock
	c.traded = map[string]struct{}{}
	for _, code := range snap.TradedCodes {
		c.traded[code] = struct{}{}
	}
	c.date = snap.LastResetDate
	return nil
}

// Flush writes the current state back to the store.
func (c *Counters) Flush(ctx context.Context) error {
	c.mu.Lock()
	codes := make([]string, 0, len(c.traded))
	for code := range c.traded {
		codes = append(codes, code)
	}
	per := make(map[string]int, len(c.perStock))
	for k, v := range c.perStock {
		per[k] = v
	}
	snap := store.Snapshot{PerStock: per, TradedCodes: codes, LastResetDate: c.date}
	c.mu.Unlock()
	return c.st.Save(ctx, snap)
}

// CanBuy reports whether a new buy for code is allowed given the
// current open-position count. The returned reason labels the deny.
func (c *Counters) CanBuy(code string, openPositions int) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeReset()

	if openPositions >= c.cfg.MaxPositions {
		return false, DenyMaxPositions
	}
	if c.perStock[code] >= c.cfg.MaxTradesPerStock {
		return false, DenyStockCap
	}
	if _, seen := c.traded[code]; !seen && len(c.traded) >= c.cfg.MaxDailyStocks {
		return false, DenyDailyCap
	}
	return true, ""
}

// RecordBuy bumps the counters after a confirmed submission.
func (c *Counters) RecordBuy(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeReset()
	c.perStock[code]++
	c.traded[code] = struct{}{}
}

// TradeCount returns the recorded trades for one code.
func (c *Counters) TradeCount(code string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perStock[code]
}

// DistinctTraded returns how many distinct codes traded today.
func (c *Counters) DistinctTraded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.traded)
}

func (c *Counters) today() string {
	return c.now().Format("2006-01-02")
}

// maybeReset clears everything when the calendar date has advanced.
// Caller holds the lock.
func (c *Counters) maybeReset() {
	today := c.today()
	if c.date == today {
		return
	}
	c.perStock = map[string]int{}
	c.traded = map[string]struct{}{}
	c.date = today
}
