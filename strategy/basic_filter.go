package strategy

import "github.com/kstocklab/kats/types"

// basicBuy is the baseline filter: it ignores bar data entirely and
// compares the change-percent drift since detection against a band,
// plus a live-volume floor. The caller has already rejected drift <= 0
// (the veto), so only the band and the floor remain.
func (e *Evaluator) basicBuy(c *types.Candidate, drift float64) bool {
	cfg := e.cfg.BasicFilter
	if drift < cfg.DriftMinPct || drift > cfg.DriftMaxPct {
		return false
	}
	return c.Volume >= cfg.MinVolume
}
