package config

import (
	"errors"
	"fmt"
	"time"
)

// Window is a time-of-day range in exchange local time, "HH:MM" inclusive
// on both ends. A zero Window contains nothing.
type Window struct {
	Start string
	End   string
}

// Contains reports whether the clock time of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	start, err1 := parseClock(w.Start)
	end, err2 := parseClock(w.End)
	if err1 != nil || err2 != nil {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= start && m <= end
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return h*60 + m, nil
}

// MomentumOpenConfig tunes the opening momentum strategy.
type MomentumOpenConfig struct {
	Enabled         bool
	MinBars         int
	ConsecRises     int     // required consecutive rising bars
	ShortMAPeriod   int
	MidMAPeriod     int
	VolumeSurge     float64 // current volume vs trailing average
	VolumeWindow    int
	MinRisePct      float64 // rise of the current bar
	PrevMinRisePct  float64 // rise of the prior bar
	MaxPullbackPct  float64 // cap on drawdown from the recent high
	MinBullishRatio float64 // fraction of bullish bars in the window
	RSIPeriod       int
	RSIMin          float64
	RSIMax          float64
	FallbackRisePct float64 // degraded-mode drift threshold
}

// BollingerBreakoutConfig tunes the band-breakout strategy.
type BollingerBreakoutConfig struct {
	Enabled          bool
	MinBars          int
	MaxOpenBouncePct float64 // reject excessive open->high bounce
	ShortMAPeriod    int
	MinRisePct       float64 // alternative to the short-MA check
	VolumeSurge      float64
	VolumeWindow     int
	FallbackRisePct  float64
}

// ClosingAuctionConfig tunes the closing-auction strategy.
type ClosingAuctionConfig struct {
	Enabled         bool
	MinBars         int
	MinRisePct      float64
	ShortMAPeriod   int
	VolumeSurge     float64
	VolumeWindow    int
	MinNotional     float64 // price x volume floor
	MaxRangePct     float64 // (high-low)/low cap over the window
	RangeWindow     int
	FallbackRisePct float64
}

// ScalpingPullbackConfig tunes the pullback-rebound scalping strategy.
type ScalpingPullbackConfig struct {
	Enabled         bool
	MinBars         int
	PullbackMinPct  float64 // peak-to-valley depth band
	PullbackMaxPct  float64
	ReboundMinPct   float64 // minimum rise since the valley
	ReboundMinBars  int
	VolumeSurge     float64
	VolumeWindow    int
	RSIPeriod       int
	RSIMin          float64
	RSIMax          float64
	FallbackRisePct float64
}

// BreakoutConfig tunes the volume-breakout strategy.
type BreakoutConfig struct {
	Enabled         bool
	MinBars         int
	Vol1Coef        float64 // vs 1-bar trailing average
	Vol3Coef        float64 // vs 3-bar trailing average
	Vol5Coef        float64 // vs 5-bar trailing average
	MinNotional     float64
	HighWindow      int
	HighBreakPct    float64 // min distance above the recent high
	RelaxCoef       float64 // fallback relaxation for break + RSI floors
	ShortRisePct    float64 // short-term rise required by the relaxed path
	DayChangeMinPct float64
	DayChangeMaxPct float64
	ExpandCoef      float64 // widens the day-change band
	ShortMAPeriod   int
	RSIPeriod       int
	RSIFloor        float64
	FallbackRisePct float64
}

// BasicFilterConfig tunes the baseline "basic buy" filter. When
// enabled and the drift since detection is <= 0 it vetoes every other
// strategy's signal for the candidate.
type BasicFilterConfig struct {
	Enabled     bool
	DriftMinPct float64
	DriftMaxPct float64
	MinVolume   float64
}

// StrategyConfig bundles one parameter record per strategy. It is
// read-only during evaluation; only external configuration mutates it.
type StrategyConfig struct {
	MomentumOpen      MomentumOpenConfig
	BollingerBreakout BollingerBreakoutConfig
	ClosingAuction    ClosingAuctionConfig
	ScalpingPullback  ScalpingPullbackConfig
	Breakout          BreakoutConfig
	BasicFilter       BasicFilterConfig

	// Time-of-day gates per strategy group.
	OpenWindow  Window // momentum-open
	MidWindow   Window // bollinger, scalping, breakout
	CloseWindow Window // closing-auction
}

// MaxMinBars returns the largest minimum-bar requirement across the
// enabled bar-based strategies. The marketdata gateway treats shorter
// fetches as empty so every strategy degrades together.
func (c *StrategyConfig) MaxMinBars() int {
	max := 0
	take := func(enabled bool, n int) {
		if enabled && n > max {
			max = n
		}
	}
	take(c.MomentumOpen.Enabled, c.MomentumOpen.MinBars)
	take(c.BollingerBreakout.Enabled, c.BollingerBreakout.MinBars)
	take(c.ClosingAuction.Enabled, c.ClosingAuction.MinBars)
	take(c.ScalpingPullback.Enabled, c.ScalpingPullback.MinBars)
	take(c.Breakout.Enabled, c.Breakout.MinBars)
	return max
}

// RiskConfig tunes the per-position exit state machine and the
// trade-count caps.
type RiskConfig struct {
	TrailingEnabled     bool
	TrailingActivatePct float64 // max profit needed before trailing arms
	TrailingDropPct     float64 // drop from max profit that fires the stop
	TakeProfitPct       float64
	StopLossPct         float64 // negative, e.g. -2.5
	LimitSell           bool    // limit instead of market exits
	LimitOffsetTicks    float64 // added to the current price for limit exits
	LiquidateEnabled    bool
	LiquidateAt         string // "HH:MM"

	MaxPositions      int
	MaxTradesPerStock int
	MaxDailyStocks    int
}

// EngineConfig tunes the scheduler and the marketdata gateway.
type EngineConfig struct {
	TickInterval   time.Duration
	BatchSize      int
	BatchDelay     time.Duration
	SearchCooldown time.Duration
	RetryMax       int
	RetryBase      time.Duration

	FixedAmount float64 // KRW spent per new position
	FeeRate     float64
	PriceOffset float64 // added to the quote before a buy limit order
	Account     string

	ExcludeNamePatterns []string
	TradingHours        Window
	ConditionIDs        []int
}

// Config is the root configuration object.
type Config struct {
	Strategy StrategyConfig
	Risk     RiskConfig
	Engine   EngineConfig
}

// Default returns a conservative parameter set for the KRX regular
// session. Every threshold is meant to be overridden per deployment.
func Default() Config {
	return Config{
		Strategy: StrategyConfig{
			MomentumOpen: MomentumOpenConfig{
				MinBars: 20, ConsecRises: 3,
				ShortMAPeriod: 5, MidMAPeriod: 10,
				VolumeSurge: 2.0, VolumeWindow: 10,
				MinRisePct: 0.3, PrevMinRisePct: 0.2,
				MaxPullbackPct: 1.5, MinBullishRatio: 0.6,
				RSIPeriod: 14, RSIMin: 55, RSIMax: 85,
				FallbackRisePct: 2.0,
			},
			BollingerBreakout: BollingerBreakoutConfig{
				MinBars: 20, MaxOpenBouncePct: 3.0,
				ShortMAPeriod: 5, MinRisePct: 0.5,
				VolumeSurge: 2.5, VolumeWindow: 10,
				FallbackRisePct: 1.5,
			},
			ClosingAuction: ClosingAuctionConfig{
				MinBars: 20, MinRisePct: 0.5, ShortMAPeriod: 5,
				VolumeSurge: 2.0, VolumeWindow: 10,
				MinNotional: 50_000_000, MaxRangePct: 4.0, RangeWindow: 10,
				FallbackRisePct: 1.0,
			},
			ScalpingPullback: ScalpingPullbackConfig{
				MinBars: 20, PullbackMinPct: 0.5, PullbackMaxPct: 3.0,
				ReboundMinPct: 0.3, ReboundMinBars: 2,
				VolumeSurge: 2.0, VolumeWindow: 10,
				RSIPeriod: 14, RSIMin: 40, RSIMax: 70,
				FallbackRisePct: 1.0,
			},
			Breakout: BreakoutConfig{
				MinBars: 20, Vol1Coef: 3.0, Vol3Coef: 2.5, Vol5Coef: 2.0,
				MinNotional: 100_000_000,
				HighWindow:  10, HighBreakPct: 0.2, RelaxCoef: 0.5, ShortRisePct: 0.5,
				DayChangeMinPct: 1.0, DayChangeMaxPct: 8.0, ExpandCoef: 1.2,
				ShortMAPeriod: 5, RSIPeriod: 14, RSIFloor: 50,
				FallbackRisePct: 2.0,
			},
			BasicFilter: BasicFilterConfig{
				DriftMinPct: 0.0, DriftMaxPct: 5.0, MinVolume: 10_000,
			},
			OpenWindow:  Window{Start: "09:00", End: "09:30"},
			MidWindow:   Window{Start: "09:30", End: "15:00"},
			CloseWindow: Window{Start: "15:00", End: "15:20"},
		},
		Risk: RiskConfig{
			TrailingEnabled:     true,
			TrailingActivatePct: 2.0,
			TrailingDropPct:     1.0,
			TakeProfitPct:       5.0,
			StopLossPct:         -2.5,
			LimitOffsetTicks:    0,
			LiquidateEnabled:    true,
			LiquidateAt:         "15:10",
			MaxPositions:        5,
			MaxTradesPerStock:   2,
			MaxDailyStocks:      10,
		},
		Engine: EngineConfig{
			TickInterval:        30 * time.Second,
			BatchSize:           5,
			BatchDelay:          2 * time.Second,
			SearchCooldown:      20 * time.Second,
			RetryMax:            3,
			RetryBase:           time.Second,
			FixedAmount:         500_000,
			FeeRate:             0.0092,
			PriceOffset:         0,
			ExcludeNamePatterns: []string{"레버리지", "인버스", "2X", "ETN"},
			TradingHours:        Window{Start: "09:00", End: "15:20"},
		},
	}
}

// Validate checks that all numeric fields are within sensible bounds.
// It returns the first encountered error so a configuration problem
// surfaces clearly before any trading starts.
func (c *Config) Validate() error {
	s := &c.Strategy
	if s.MomentumOpen.Enabled && s.MomentumOpen.RSIMin >= s.MomentumOpen.RSIMax {
		return errors.New("MomentumOpen: RSIMin must be below RSIMax")
	}
	// The bar path reads the newest three bars directly.
	if s.MomentumOpen.Enabled && s.MomentumOpen.MinBars < 3 {
		return errors.New("MomentumOpen: MinBars must be at least 3")
	}
	if s.ScalpingPullback.Enabled && s.ScalpingPullback.PullbackMinPct >= s.ScalpingPullback.PullbackMaxPct {
		return errors.New("ScalpingPullback: PullbackMinPct must be below PullbackMaxPct")
	}
	if s.BasicFilter.Enabled && s.BasicFilter.DriftMinPct >= s.BasicFilter.DriftMaxPct {
		return errors.New("BasicFilter: DriftMinPct must be below DriftMaxPct")
	}

	r := &c.Risk
	if r.TrailingEnabled && r.TrailingDropPct <= 0 {
		return errors.New("TrailingDropPct must be positive when trailing is enabled")
	}
	if r.StopLossPct > 0 {
		return fmt.Errorf("StopLossPct (%f) must be zero or negative", r.StopLossPct)
	}
	if r.LiquidateEnabled {
		if _, err := parseClock(r.LiquidateAt); err != nil {
			return fmt.Errorf("LiquidateAt: %w", err)
		}
	}
	if r.MaxPositions <= 0 {
		return errors.New("MaxPositions must be positive")
	}
	if r.MaxTradesPerStock <= 0 {
		return errors.New("MaxTradesPerStock must be positive")
	}
	if r.MaxDailyStocks <= 0 {
		return errors.New("MaxDailyStocks must be positive")
	}

	e := &c.Engine
	if e.TickInterval <= 0 {
		return errors.New("TickInterval must be positive")
	}
	if e.BatchSize <= 0 {
		return errors.New("BatchSize must be positive")
	}
	if e.RetryMax < 0 {
		return errors.New("RetryMax cannot be negative")
	}
	// A cooldown spanning whole ticks would starve the bar pipeline.
	if e.SearchCooldown >= e.TickInterval {
		return errors.New("SearchCooldown must be shorter than TickInterval")
	}
	if e.FixedAmount <= 0 {
		return errors.New("FixedAmount must be positive")
	}
	if e.FeeRate < 0 || e.FeeRate >= 1 {
		return fmt.Errorf("FeeRate (%f) must be in [0,1)", e.FeeRate)
	}
	return nil
}
