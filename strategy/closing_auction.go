package strategy

import "github.com/kstocklab/kats/types"

// closingAuction buys into end-of-session strength: rising (or above
// the short MA), volume surging, enough notional turnover to exit
// again, and a capped intraday range so we do not chase a whipsaw.
func (e *Evaluator) closingAuction(c *types.Candidate, bars []types.PriceBar) bool {
	cfg := e.cfg.ClosingAuction
	if len(bars) < cfg.MinBars {
		return c.DriftSinceDetection() >= cfg.FallbackRisePct
	}

	cur := bars[0]
	if risePctOver(bars, 3) < cfg.MinRisePct && cur.Close <= currentMA(bars, cfg.ShortMAPeriod) {
		return false
	}

	if !volumeSurge(bars, cfg.VolumeWindow, cfg.VolumeSurge) {
		return false
	}

	if cur.Close*cur.Volume < cfg.MinNotional {
		return false
	}

	hi, lo := recentRange(bars, cfg.RangeWindow)
	if lo > 0 && (hi-lo)/lo*100 > cfg.MaxRangePct {
		return false
	}
	return true
}
