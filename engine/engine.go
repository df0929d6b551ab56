// Package engine drives the trading loop: refresh candidates, fetch
// bars, evaluate buy and sell signals, submit orders and persist the
// trade counters. The engine owns the candidate and holding maps;
// the periodic tick and the live-quote stream are the only two
// writers, both funneled through one mutex keyed by stock code.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kstocklab/kats/config"
	"github.com/kstocklab/kats/executor"
	"github.com/kstocklab/kats/indicator"
	"github.com/kstocklab/kats/logger"
	"github.com/kstocklab/kats/marketdata"
	"github.com/kstocklab/kats/metrics"
	"github.com/kstocklab/kats/risk"
	"github.com/kstocklab/kats/strategy"
	"github.com/kstocklab/kats/types"
)

// Searcher runs the brokerage condition search.
type Searcher interface {
	Search(ctx context.Context, conditionIDs []int) (types.SearchResult, error)
}

type Engine struct {
	cfg      config.Config
	search   Searcher
	bars     *marketdata.Gateway
	exec     executor.Executor
	strat    *strategy.Evaluator
	riskMgr  *risk.Manager
	counters *risk.Counters
	log      logger.Logger

	mu         sync.Mutex
	candidates map[string]*types.Candidate
	holdings   map[string]*types.Holding

	running atomic.Bool
	now     func() time.Time
}

func New(cfg config.Config, search Searcher, bars *marketdata.Gateway,
	exec executor.Executor, counters *risk.Counters, log logger.Logger) *Engine {

	return &Engine{
		cfg:        cfg,
		search:     search,
		bars:       bars,
		exec:       exec,
		strat:      strategy.NewEvaluator(cfg.Strategy, log),
		riskMgr:    risk.NewManager(cfg.Risk),
		counters:   counters,
		log:        log,
		candidates: make(map[string]*types.Candidate),
		holdings:   make(map[string]*types.Holding),
		now:        time.Now,
	}
}

// WithClock pins the wall clock across the engine and its strategy
// and risk components. Tests use it to land inside trading windows.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	e.strat.WithClock(now)
	e.riskMgr.WithClock(now)
	e.counters.WithClock(now)
	e.bars.WithClock(now)
	return e
}

// RestoreHoldings seeds the holding map, e.g. from the brokerage
// account snapshot at startup.
func (e *Engine) RestoreHoldings(hs []types.Holding) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range hs {
		h := hs[i]
		e.holdings[h.Code] = &h
	}
	metrics.PositionsOpen.Set(float64(len(e.holdings)))
}

// Run executes ticks at the configured interval until Stop is called
// or the context is cancelled. Ticks are serialized by this loop: a
// tick that overruns simply delays the next one.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	ticker := time.NewTicker(e.cfg.Engine.TickInterval)
	defer ticker.Stop()

	e.log.Info("engine_started",
		logger.Int("conditions", len(e.cfg.Engine.ConditionIDs)),
	)
	for e.running.Load() {
		select {
		case <-ctx.Done():
			e.log.Info("engine_stopped", logger.String("reason", "context"))
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
	e.log.Info("engine_stopped", logger.String("reason", "stop"))
}

// Stop flips the running flag. The in-flight tick finishes its
// current batch; no further ticks are scheduled.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// ConsumeQuotes merges live ticks into the shared state until the
// channel closes or the context is cancelled. Run it in its own
// goroutine alongside Run.
func (e *Engine) ConsumeQuotes(ctx context.Context, quotes <-chan types.Quote) {
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-quotes:
			if !ok {
				return
			}
			e.ApplyQuote(q)
		}
	}
}

// ApplyQuote updates the quote fields of the matching candidate and
// holding. Baseline/detection fields are never touched here.
func (e *Engine) ApplyQuote(q types.Quote) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.candidates[q.Code]; ok {
		c.Price = q.Price
		c.ChangeAbs = q.ChangeAbs
		c.ChangePct = q.ChangePct
		c.Volume = q.Volume
		if c.Name == "" {
			c.Name = q.Name
		}
	}
	if h, ok := e.holdings[q.Code]; ok {
		h.UpdatePrice(q.Price)
	}
}

// Tick runs one full control cycle. Errors on individual candidates
// or holdings never abort the rest of the cycle.
func (e *Engine) Tick(ctx context.Context) {
	e.refreshCandidates(ctx)
	e.evaluateBuys(ctx)
	e.evaluateSells(ctx)
	if err := e.counters.Flush(ctx); err != nil {
		e.log.Warn("counter_flush_failed", logger.Err(err))
	}
}

// refreshCandidates re-runs the condition search and merges the
// result by code. Known codes keep their baseline/detection fields;
// codes that dropped out of the search are removed. Only a search that
// surfaces codes not already on the watch list counts as a bulk
// detection and arms the post-search fetch cooldown; a refresh that
// merely re-confirms known codes leaves bar fetches free to run.
func (e *Engine) refreshCandidates(ctx context.Context) {
	res, err := e.search.Search(ctx, e.cfg.Engine.ConditionIDs)
	if err != nil {
		if errors.Is(err, types.ErrRateLimited) {
			e.log.Info("search_skipped", logger.String("reason", "rate_limited"))
		} else {
			e.log.Warn("search_failed", logger.Err(err))
		}
		return
	}
	if !res.Success {
		e.log.Warn("search_unsuccessful")
		return
	}
	label := strings.Join(res.Conditions, ",")
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()
	fresh := false
	seen := make(map[string]struct{}, len(res.Stocks))
	for _, s := range res.Stocks {
		seen[s.Code] = struct{}{}
		if c, ok := e.candidates[s.Code]; ok {
			c.Price = s.Price
			c.ChangePct = s.ChangePct
			c.Volume = s.Volume
			continue
		}
		fresh = true
		e.candidates[s.Code] = &types.Candidate{
			Code:          s.Code,
			Name:          s.Name,
			Price:         s.Price,
			ChangePct:     s.ChangePct,
			Volume:        s.Volume,
			Condition:     label,
			DetectedAt:    now,
			BasePrice:     s.Price,
			BaseChangePct: s.ChangePct,
		}
	}
	for code := range e.candidates {
		if _, ok := seen[code]; !ok {
			delete(e.candidates, code)
		}
	}
	if fresh {
		e.bars.NoteSearch()
	}
}

// evaluateBuys walks the candidate set, fetches bars in batches and
// submits a buy for every candidate with a positive verdict.
func (e *Engine) evaluateBuys(ctx context.Context) {
	if e.cfg.Engine.Account == "" {
		// Fatal for this phase only; sells and counters still run.
		e.log.Error("buy_phase_aborted", logger.Err(types.ErrNoAccount))
		return
	}
	if !e.cfg.Engine.TradingHours.Contains(e.now()) {
		return
	}

	eligible := e.eligibleCandidates()
	if len(eligible) == 0 {
		return
	}
	codes := make([]string, len(eligible))
	for i, c := range eligible {
		codes[i] = c.Code
	}
	barsByCode := e.bars.FetchBatch(ctx, codes)

	for _, cand := range eligible {
		if ctx.Err() != nil {
			return
		}
		c := cand
		if !e.strat.Evaluate(&c, barsByCode[c.Code]) {
			continue
		}
		e.submitBuy(ctx, &c)
	}
}

// eligibleCandidates snapshots the candidates that may be bought this
// tick: not already held, not an excluded instrument, caps not hit.
func (e *Engine) eligibleCandidates() []types.Candidate {
	e.mu.Lock()
	defer e.mu.Unlock()
	open := len(e.holdings)
	out := make([]types.Candidate, 0, len(e.candidates))
	for code, c := range e.candidates {
		if _, held := e.holdings[code]; held {
			continue
		}
		if e.excludedName(c.Name) {
			continue
		}
		if ok, reason := e.counters.CanBuy(code, open); !ok {
			metrics.BuySkips.WithLabelValues(reason).Inc()
			continue
		}
		out = append(out, *c)
	}
	return out
}

func (e *Engine) excludedName(name string) bool {
	for _, pat := range e.cfg.Engine.ExcludeNamePatterns {
		if pat != "" && strings.Contains(name, pat) {
			return true
		}
	}
	return false
}

func (e *Engine) submitBuy(ctx context.Context, c *types.Candidate) {
	// Sized off the raw quote; the offset only moves the limit price.
	price := indicator.RoundToTickSize(c.Price + e.cfg.Engine.PriceOffset)
	qty := risk.OrderQty(e.cfg.Engine.FixedAmount, e.cfg.Engine.FeeRate, c.Price)
	if qty == 0 {
		metrics.BuySkips.WithLabelValues("zero_qty").Inc()
		return
	}

	// Caps may have moved since the snapshot; re-check at submit time.
	e.mu.Lock()
	open := len(e.holdings)
	_, held := e.holdings[c.Code]
	e.mu.Unlock()
	if held {
		return
	}
	if ok, reason := e.counters.CanBuy(c.Code, open); !ok {
		metrics.BuySkips.WithLabelValues(reason).Inc()
		return
	}

	o := types.Order{
		Code:    c.Code,
		Side:    types.Buy,
		Qty:     qty,
		Price:   price,
		Mode:    types.Limit,
		Account: e.cfg.Engine.Account,
		Comment: "entry " + c.Condition,
	}
	res, err := e.exec.Submit(ctx, o)
	if err != nil {
		var vErr *types.ValidationError
		switch {
		case errors.Is(err, types.ErrEnvRestricted):
			e.log.Info("buy_skipped",
				logger.String("code", c.Code),
				logger.String("reason", "env_restricted"),
			)
			metrics.BuySkips.WithLabelValues("env_restricted").Inc()
		case errors.As(err, &vErr):
			e.log.Warn("buy_invalid", logger.String("code", c.Code), logger.Err(err))
			metrics.BuySkips.WithLabelValues("validation").Inc()
		default:
			e.log.Error("buy_submit_failed", logger.String("code", c.Code), logger.Err(err))
		}
		return
	}
	if !res.Success {
		e.log.Warn("buy_rejected",
			logger.String("code", c.Code),
			logger.String("message", res.Message),
		)
		return
	}

	e.log.Info("order_submitted",
		logger.String("code", c.Code),
		logger.String("side", string(types.Buy)),
		logger.Int64("qty", qty),
		logger.Float64("price", price),
		logger.String("order_id", res.OrderID),
	)
	metrics.OrdersSubmitted.WithLabelValues(string(types.Buy)).Inc()

	e.mu.Lock()
	e.holdings[c.Code] = &types.Holding{
		Code:    c.Code,
		Name:    c.Name,
		Qty:     qty,
		AvgCost: price,
		Price:   price,
	}
	metrics.PositionsOpen.Set(float64(len(e.holdings)))
	e.mu.Unlock()
	e.counters.RecordBuy(c.Code)
}

// evaluateSells runs the exit state machine over every holding and
// submits at most one sell per holding per tick.
func (e *Engine) evaluateSells(ctx context.Context) {
	type pending struct {
		order  types.Order
		reason risk.ExitReason
	}

	e.mu.Lock()
	var sells []pending
	for _, h := range e.holdings {
		sig, fire := e.riskMgr.Evaluate(h)
		if !fire {
			continue
		}
		sells = append(sells, pending{
			order: types.Order{
				Code:    h.Code,
				Side:    types.Sell,
				Qty:     h.Qty,
				Price:   sig.Price,
				Mode:    sig.Mode,
				Account: e.cfg.Engine.Account,
				Comment: string(sig.Reason),
			},
			reason: sig.Reason,
		})
	}
	e.mu.Unlock()

	for _, p := range sells {
		if ctx.Err() != nil {
			return
		}
		res, err := e.exec.Submit(ctx, p.order)
		if err != nil {
			if errors.Is(err, types.ErrEnvRestricted) {
				e.log.Info("sell_skipped",
					logger.String("code", p.order.Code),
					logger.String("reason", "env_restricted"),
				)
				continue
			}
			e.log.Error("sell_submit_failed", logger.String("code", p.order.Code), logger.Err(err))
			continue
		}
		if !res.Success {
			e.log.Warn("sell_rejected",
				logger.String("code", p.order.Code),
				logger.String("message", res.Message),
			)
			continue
		}

		e.log.Info("order_submitted",
			logger.String("code", p.order.Code),
			logger.String("side", string(types.Sell)),
			logger.Int64("qty", p.order.Qty),
			logger.Float64("price", p.order.Price),
			logger.String("reason", string(p.reason)),
		)
		metrics.OrdersSubmitted.WithLabelValues(string(types.Sell)).Inc()
		metrics.SellTriggers.WithLabelValues(string(p.reason)).Inc()

		e.mu.Lock()
		delete(e.holdings, p.order.Code)
		metrics.PositionsOpen.Set(float64(len(e.holdings)))
		e.mu.Unlock()
	}
}

// Candidates returns a snapshot of the watch list.
func (e *Engine) Candidates() []types.Candidate {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.Candidate, 0, len(e.candidates))
	for _, c := range e.candidates {
		out = append(out, *c)
	}
	return out
}

// Holdings returns a snapshot of the open positions.
func (e *Engine) Holdings() []types.Holding {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.Holding, 0, len(e.holdings))
	for _, h := range e.holdings {
		out = append(out, *h)
	}
	return out
}
