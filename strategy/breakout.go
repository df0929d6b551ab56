package strategy

import (
	"github.com/kstocklab/kats/indicator"
	"github.com/kstocklab/kats/types"
)

// breakout buys volume-driven escapes above the recent high. Any one
// of the 1-, 3- or 5-bar trailing volume averages crossing its
// coefficient counts as a surge. The high-distance and RSI floors
// have a relaxed path: when the short-term rise confirms the move the
// thresholds are multiplied by RelaxCoef.
func (e *Evaluator) breakout(c *types.Candidate, bars []types.PriceBar) bool {
	cfg := e.cfg.Breakout
	if len(bars) < cfg.MinBars {
		return c.DriftSinceDetection() >= cfg.FallbackRisePct
	}

	cur := bars[0]
	surge := false
	for _, w := range []struct {
		window int
		coef   float64
	}{{1, cfg.Vol1Coef}, {3, cfg.Vol3Coef}, {5, cfg.Vol5Coef}} {
		if avg := trailingAvgVolume(bars, w.window); avg > 0 && cur.Volume >= avg*w.coef {
			surge = true
			break
		}
	}
	if !surge {
		return false
	}

	if cur.Close*cur.Volume < cfg.MinNotional {
		return false
	}

	// Distance above the recent high, excluding the current bar.
	hi := recentHigh(bars[1:], cfg.HighWindow)
	if hi <= 0 {
		return false
	}
	relaxed := false
	if cur.Close < hi*(1+cfg.HighBreakPct/100) {
		if cur.Close < hi*(1+cfg.HighBreakPct*cfg.RelaxCoef/100) {
			return false
		}
		if risePctOver(bars, 3) < cfg.ShortRisePct {
			return false
		}
		relaxed = true
	}

	if c.ChangePct < cfg.DayChangeMinPct*cfg.RelaxCoef || c.ChangePct > cfg.DayChangeMaxPct*cfg.ExpandCoef {
		return false
	}

	if cur.Close <= currentMA(bars, cfg.ShortMAPeriod) {
		return false
	}

	floor := cfg.RSIFloor
	if relaxed {
		floor *= cfg.RelaxCoef
	}
	return indicator.RSI(bars, cfg.RSIPeriod) >= floor
}
