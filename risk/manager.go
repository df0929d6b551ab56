// Package risk holds the per-position exit state machine, the
// trade-count gates and the order sizing rule.
package risk

import (
	"time"

	"github.com/kstocklab/kats/config"
	"github.com/kstocklab/kats/indicator"
	"github.com/kstocklab/kats/types"
)

type ExitReason string

const (
	ReasonTrailingStop ExitReason = "trailing_stop"
	ReasonTakeProfit   ExitReason = "take_profit"
	ReasonStopLoss     ExitReason = "stop_loss"
	ReasonLiquidation  ExitReason = "time_liquidation"
)

// ExitSignal tells the engine to flatten a holding. Price is 0 for
// market exits.
type ExitSignal struct {
	Reason ExitReason
	Price  float64
	Mode   types.PriceMode
}

// Manager evaluates open holdings for sell signals once per tick.
type Manager struct {
	cfg config.RiskConfig
	now func() time.Time
}

func NewManager(cfg config.RiskConfig) *Manager {
	return &Manager{cfg: cfg, now: time.Now}
}

// WithClock replaces the wall clock for the time-liquidation check.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Evaluate runs the exit checks in fixed order; the first matching
// condition wins, so a holding never produces two sell orders in one
// tick. It also advances MaxProfitPct, which is the only place that
// anchor is ever moved.
func (m *Manager) Evaluate(h *types.Holding) (ExitSignal, bool) {
	if h.ProfitPct > h.MaxProfitPct {
		h.MaxProfitPct = h.ProfitPct
	}

	// Trailing stop arms only once max profit reached the activation
	// threshold; before that a sharp drop is the stop-loss's problem.
	if m.cfg.TrailingEnabled &&
		h.MaxProfitPct >= m.cfg.TrailingActivatePct &&
		h.MaxProfitPct-h.ProfitPct >= m.cfg.TrailingDropPct {
		return m.exit(h, ReasonTrailingStop), true
	}

	if m.cfg.TakeProfitPct > 0 && h.MaxProfitPct >= m.cfg.TakeProfitPct {
		return m.exit(h, ReasonTakeProfit), true
	}

	if h.ProfitPct <= m.cfg.StopLossPct {
		return m.exit(h, ReasonStopLoss), true
	}

	if m.cfg.LiquidateEnabled && m.pastLiquidation() {
		// Unconditional market exit regardless of the sell mode.
		return ExitSignal{Reason: ReasonLiquidation, Mode: types.Market}, true
	}

	return ExitSignal{}, false
}

func (m *Manager) exit(h *types.Holding, reason ExitReason) ExitSignal {
	if !m.cfg.LimitSell {
		return ExitSignal{Reason: reason, Mode: types.Market}
	}
	price := indicator.RoundToTickSize(h.Price + m.cfg.LimitOffsetTicks)
	return ExitSignal{Reason: reason, Price: price, Mode: types.Limit}
}

func (m *Manager) pastLiquidation() bool {
	at, err := time.Parse("15:04", m.cfg.LiquidateAt)
	if err != nil {
		return false
	}
	now := m.now()
	nowMin := now.Hour()*60 + now.Minute()
	return nowMin >= at.Hour()*60+at.Minute()
}
