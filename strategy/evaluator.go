// Package strategy fuses several independently tunable buy strategies
// into a single verdict per candidate. Every strategy is a pure
// function of (candidate, recent bars, config); the Evaluator adds the
// time-of-day gating and the baseline-filter veto on top.
package strategy

import (
	"time"

	"github.com/kstocklab/kats/config"
	"github.com/kstocklab/kats/logger"
	"github.com/kstocklab/kats/types"
)

// Evaluator computes the final buy verdict for one candidate.
type Evaluator struct {
	cfg config.StrategyConfig
	log logger.Logger
	now func() time.Time
}

func NewEvaluator(cfg config.StrategyConfig, log logger.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, log: log, now: time.Now}
}

// WithClock replaces the wall clock, used by the engine and by tests
// to pin the time-of-day windows.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// MinBars returns the bar count every fetch must reach before the
// bar-based strategies leave degraded mode.
func (e *Evaluator) MinBars() int {
	return e.cfg.MaxMinBars()
}

// Evaluate returns true when the candidate should be bought now.
//
// The baseline filter is checked first: when it is enabled and the
// drift since detection is not positive it vetoes everything else,
// regardless of the other strategies' results. Otherwise the verdict
// is the OR of every enabled strategy whose time window contains the
// current clock time.
func (e *Evaluator) Evaluate(c *types.Candidate, bars []types.PriceBar) bool {
	now := e.now()
	drift := c.ChangePct - c.BaseChangePct

	if e.cfg.BasicFilter.Enabled && drift <= 0 {
		return false
	}

	verdict := false
	signal := func(name string) {
		verdict = true
		e.log.Info("buy_signal",
			logger.String("code", c.Code),
			logger.String("strategy", name),
			logger.Float64("price", c.Price),
		)
	}

	if e.cfg.BasicFilter.Enabled && e.basicBuy(c, drift) {
		signal("basic")
	}
	if e.cfg.MomentumOpen.Enabled && e.cfg.OpenWindow.Contains(now) && e.momentumOpen(c, bars) {
		signal("momentum_open")
	}
	if e.cfg.BollingerBreakout.Enabled && e.cfg.MidWindow.Contains(now) && e.bollingerBreakout(c, bars) {
		signal("bollinger_breakout")
	}
	if e.cfg.ScalpingPullback.Enabled && e.cfg.MidWindow.Contains(now) && e.scalpingPullback(c, bars) {
		signal("scalping_pullback")
	}
	if e.cfg.Breakout.Enabled && e.cfg.MidWindow.Contains(now) && e.breakout(c, bars) {
		signal("breakout")
	}
	if e.cfg.ClosingAuction.Enabled && e.cfg.CloseWindow.Contains(now) && e.closingAuction(c, bars) {
		signal("closing_auction")
	}
	return verdict
}
