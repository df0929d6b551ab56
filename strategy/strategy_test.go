package strategy

import (
	"time"

	"github.com/kstocklab/kats/config"
	"github.com/kstocklab/kats/logger"
	"github.com/kstocklab/kats/types"
)

// clockAt pins the evaluator clock to a fixed time of day.
func clockAt(h, m int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 28, h, m, 0, 0, time.UTC)
	}
}

// testConfig returns the default strategy parameters with every
// strategy disabled and every window left open, so each test enables
// exactly what it exercises.
func testConfig() config.StrategyConfig {
	cfg := config.Default().Strategy
	cfg.MomentumOpen.Enabled = false
	cfg.BollingerBreakout.Enabled = false
	cfg.ClosingAuction.Enabled = false
	cfg.ScalpingPullback.Enabled = false
	cfg.Breakout.Enabled = false
	cfg.BasicFilter.Enabled = false
	wide := config.Window{Start: "00:00", End: "23:59"}
	cfg.OpenWindow = wide
	cfg.MidWindow = wide
	cfg.CloseWindow = wide
	return cfg
}

func newTestEvaluator(cfg config.StrategyConfig) *Evaluator {
	return NewEvaluator(cfg, logger.NewNop()).WithClock(clockAt(10, 0))
}

func nopLog() logger.Logger { return logger.NewNop() }

func testWindow(start, end string) config.Window {
	return config.Window{Start: start, End: end}
}

// upBars builds a newest-first window of n bullish bars whose closes
// rise by stepPct per bar chronologically. Every bar carries volume
// vol; callers bump bars[0].Volume to simulate a surge.
func upBars(n int, start, stepPct, vol float64) []types.PriceBar {
	closes := make([]float64, n)
	c := start
	for i := 0; i < n; i++ {
		closes[i] = c
		c *= 1 + stepPct/100
	}
	return barsFromCloses(vol, closes...)
}

// barsFromCloses builds newest-first bars from chronological closes.
func barsFromCloses(vol float64, closes ...float64) []types.PriceBar {
	n := len(closes)
	out := make([]types.PriceBar, n)
	for i, c := range closes {
		out[n-1-i] = types.PriceBar{
			Open:   c * 0.995,
			High:   c * 1.001,
			Low:    c * 0.99,
			Close:  c,
			Volume: vol,
		}
	}
	return out
}

func candidateAt(price, basePrice, changePct, baseChangePct, volume float64) types.Candidate {
	return types.Candidate{
		Code:          "005930",
		Name:          "삼성전자",
		Price:         price,
		ChangePct:     changePct,
		Volume:        volume,
		BasePrice:     basePrice,
		BaseChangePct: baseChangePct,
		DetectedAt:    time.Date(2026, 8, 28, 9, 5, 0, 0, time.UTC),
	}
}
