package strategy

import "github.com/kstocklab/kats/types"

// bollingerBreakout buys band-escape moves that are carried by volume.
// A bar that already bounced far above its open is rejected: by the
// time we would fill, the move is spent.
func (e *Evaluator) bollingerBreakout(c *types.Candidate, bars []types.PriceBar) bool {
	cfg := e.cfg.BollingerBreakout
	if len(bars) < cfg.MinBars {
		return c.DriftSinceDetection() >= cfg.FallbackRisePct
	}

	cur := bars[0]
	if cur.Open > 0 && (cur.High-cur.Open)/cur.Open*100 > cfg.MaxOpenBouncePct {
		return false
	}

	aboveMA := cur.Close > currentMA(bars, cfg.ShortMAPeriod)
	recentRise := risePctOver(bars, 3) >= cfg.MinRisePct
	if !aboveMA && !recentRise {
		return false
	}

	return volumeSurge(bars, cfg.VolumeWindow, cfg.VolumeSurge)
}
