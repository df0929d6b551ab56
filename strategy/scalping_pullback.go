package strategy

import (
	"github.com/kstocklab/kats/indicator"
	"github.com/kstocklab/kats/types"
)

// scalpingPullback looks for a local high, a pullback into a local
// low, and renewed rises off that low. Extrema are 2-bar-wide: a bar
// counts as a peak/valley only against its two neighbors on each side.
// When no peak/valley pair exists in the window, a plain volume surge
// still qualifies.
func (e *Evaluator) scalpingPullback(c *types.Candidate, bars []types.PriceBar) bool {
	cfg := e.cfg.ScalpingPullback
	if len(bars) < cfg.MinBars {
		return c.DriftSinceDetection() >= cfg.FallbackRisePct
	}

	surge := volumeSurge(bars, cfg.VolumeWindow, cfg.VolumeSurge)

	peak, valley, valleyAge, ok := lastPeakValley(bars)
	if !ok {
		return surge
	}

	depth := (peak - valley) / peak * 100
	if depth < cfg.PullbackMinPct || depth > cfg.PullbackMaxPct {
		return false
	}

	if valleyAge < cfg.ReboundMinBars {
		return false
	}
	rebound := (bars[0].Close - valley) / valley * 100
	if rebound < cfg.ReboundMinPct {
		return false
	}

	if surge {
		return true
	}
	rsi := indicator.RSI(bars, cfg.RSIPeriod)
	return rsi >= cfg.RSIMin && rsi <= cfg.RSIMax
}

// lastPeakValley scans the closes chronologically for the most recent
// valley that is preceded by a peak. valleyAge is the number of bars
// between the valley and the current bar.
func lastPeakValley(bars []types.PriceBar) (peak, valley float64, valleyAge int, ok bool) {
	n := len(bars)
	if n < 7 {
		return 0, 0, 0, false
	}
	// Chronological closes: cs[0] oldest, cs[n-1] current.
	cs := make([]float64, n)
	for i, b := range bars {
		cs[n-1-i] = b.Close
	}

	isPeak := func(i int) bool {
		return cs[i] > cs[i-1] && cs[i] > cs[i-2] && cs[i] > cs[i+1] && cs[i] > cs[i+2]
	}
	isValley := func(i int) bool {
		return cs[i] < cs[i-1] && cs[i] < cs[i-2] && cs[i] < cs[i+1] && cs[i] < cs[i+2]
	}

	for v := n - 3; v >= 2; v-- {
		if !isValley(v) {
			continue
		}
		for p := v - 1; p >= 2; p-- {
			if isPeak(p) {
				return cs[p], cs[v], n - 1 - v, true
			}
		}
		return 0, 0, 0, false
	}
	return 0, 0, 0, false
}
