package strategy

import (
	"testing"

	"github.com/kstocklab/kats/types"
)

func breakoutEvaluator() *Evaluator {
	cfg := testConfig()
	cfg.Breakout.Enabled = true
	return newTestEvaluator(cfg)
}

// breakoutRampBars is a 0.5%-per-bar ramp with enough volume to clear
// the notional floor. The final close sits ~0.4% above the prior highs,
// a full break of the 0.2% distance threshold.
func breakoutRampBars() []types.PriceBar {
	bars := upBars(20, 10_000, 0.5, 10_000)
	bars[0].Volume = 30_000 // 3x the 1-bar trailing average
	return bars
}

func TestBreakout_SignalsOnVolumeDrivenHighBreak(t *testing.T) {
	e := breakoutEvaluator()
	bars := breakoutRampBars()

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if !e.Evaluate(&c, bars) {
		t.Fatal("expected a breakout signal on a volume-driven high break")
	}
}

func TestBreakout_RejectsWithoutVolumeSurge(t *testing.T) {
	e := breakoutEvaluator()
	bars := upBars(20, 10_000, 0.5, 10_000) // flat volume everywhere

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&c, bars) {
		t.Fatal("expected no signal without any trailing-volume surge")
	}
}

func TestBreakout_RejectsBelowNotionalFloor(t *testing.T) {
	e := breakoutEvaluator()
	bars := upBars(20, 10_000, 0.5, 100)
	bars[0].Volume = 300 // surges, but ~3.3M notional

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&c, bars) {
		t.Fatal("expected the notional floor to reject a thin surge")
	}
}

func TestBreakout_RejectsDayChangeOutsideBand(t *testing.T) {
	e := breakoutEvaluator()
	bars := breakoutRampBars()

	hot := candidateAt(bars[0].Close, 10_000, 12.0, 0, 50_000) // above 8% x 1.2
	if e.Evaluate(&hot, bars) {
		t.Fatal("expected no signal above the expanded day-change ceiling")
	}

	cold := candidateAt(bars[0].Close, 10_000, 0.3, 0, 50_000) // below 1% x 0.5
	if e.Evaluate(&cold, bars) {
		t.Fatal("expected no signal below the relaxed day-change floor")
	}
}

// relaxedBreakCloses oscillates toward 10000 and finishes at 10025,
// between the relaxed (0.1%) and full (0.2%) break distances above the
// 10010 recent high. The last three bars rise 0.75%, confirming the
// relaxed path.
func relaxedBreakCloses() []float64 {
	return []float64{
		9800, 9850, 9820, 9880, 9850, 9900, 9870, 9920, 9890, 9940,
		9910, 9960, 9930, 9990, 9960, 9970, 9950, 9980, 10000, 10025,
	}
}

func TestBreakout_RelaxedPathNeedsShortTermRise(t *testing.T) {
	e := breakoutEvaluator()

	bars := barsFromCloses(10_000, relaxedBreakCloses()...)
	bars[0].Volume = 30_000
	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if !e.Evaluate(&c, bars) {
		t.Fatal("expected the relaxed break path to signal with a confirming rise")
	}

	// Flatten the 3-bar rise below the confirmation threshold.
	closes := relaxedBreakCloses()
	closes[16] = 10_000 // rise over 3 bars drops to 0.25%
	flat := barsFromCloses(10_000, closes...)
	flat[0].Volume = 30_000
	if e.Evaluate(&c, flat) {
		t.Fatal("expected no relaxed break without the short-term rise")
	}
}

func TestBreakout_DegradedUsesDriftSinceDetection(t *testing.T) {
	e := breakoutEvaluator()

	c := candidateAt(10_300, 10_000, 3.0, 0, 50_000) // +3% vs 2% fallback
	if !e.Evaluate(&c, nil) {
		t.Fatal("expected degraded breakout to signal on drift alone")
	}

	weak := candidateAt(10_100, 10_000, 1.0, 0, 50_000)
	if e.Evaluate(&weak, nil) {
		t.Fatal("expected no degraded signal below the fallback threshold")
	}
}
