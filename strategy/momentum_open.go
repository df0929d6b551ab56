package strategy

import (
	"github.com/kstocklab/kats/indicator"
	"github.com/kstocklab/kats/types"
)

// momentumOpen catches stocks that open the session with sustained
// momentum: several rising bars in a row, short MA over mid MA, a
// volume surge and an RSI that is strong but not yet exhausted.
//
// Live bar fetches routinely fail under rate limits, so with too few
// bars the strategy degrades to the relative move since detection.
func (e *Evaluator) momentumOpen(c *types.Candidate, bars []types.PriceBar) bool {
	cfg := e.cfg.MomentumOpen
	if len(bars) < cfg.MinBars {
		return c.DriftSinceDetection() >= cfg.FallbackRisePct
	}

	if consecutiveRises(bars) < cfg.ConsecRises {
		return false
	}

	price := bars[0].Close
	shortMA := currentMA(bars, cfg.ShortMAPeriod)
	midMA := currentMA(bars, cfg.MidMAPeriod)
	if !(price > shortMA && shortMA > midMA) {
		return false
	}

	if !volumeSurge(bars, cfg.VolumeWindow, cfg.VolumeSurge) {
		return false
	}

	if barRisePct(bars[0], bars[1]) < cfg.MinRisePct {
		return false
	}
	if barRisePct(bars[1], bars[2]) < cfg.PrevMinRisePct {
		return false
	}

	// Too far off the recent high means we are buying a fade, not a run.
	if hi := recentHigh(bars, cfg.VolumeWindow); hi > 0 {
		if (hi-price)/hi*100 > cfg.MaxPullbackPct {
			return false
		}
	}

	if bullishRatio(bars, cfg.VolumeWindow) < cfg.MinBullishRatio {
		return false
	}

	rsi := indicator.RSI(bars, cfg.RSIPeriod)
	return rsi >= cfg.RSIMin && rsi <= cfg.RSIMax
}
