package strategy

import "testing"

// pullbackCloses is a 20-bar chronological shape: ramp to a peak of
// 10600, pullback to a 10350 valley, then a rebound to 10560. Depth
// peak-to-valley is ~2.36%, rebound off the valley is ~2.03%.
func pullbackCloses() []float64 {
	return []float64{
		10000, 10050, 10100, 10150, 10200, 10250, 10300, 10350, 10400, 10450,
		10500, 10550, 10600, 10500, 10400, 10350, 10420, 10480, 10520, 10560,
	}
}

func scalpingEvaluator(maxPullback float64) *Evaluator {
	cfg := testConfig()
	cfg.ScalpingPullback.Enabled = true
	cfg.ScalpingPullback.PullbackMinPct = 0.5
	cfg.ScalpingPullback.PullbackMaxPct = maxPullback
	cfg.ScalpingPullback.ReboundMinPct = 0.3
	cfg.ScalpingPullback.ReboundMinBars = 2
	return newTestEvaluator(cfg)
}

func TestScalpingPullback_SignalsOnPeakValleyRebound(t *testing.T) {
	e := scalpingEvaluator(3.0)
	bars := barsFromCloses(1000, pullbackCloses()...)
	bars[0].Volume = 3000 // surge confirmation

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if !e.Evaluate(&c, bars) {
		t.Fatal("expected a scalping signal on the pullback-rebound shape")
	}
}

func TestScalpingPullback_RejectsPullbackOutsideBand(t *testing.T) {
	e := scalpingEvaluator(2.0) // depth ~2.36% now exceeds the band
	bars := barsFromCloses(1000, pullbackCloses()...)
	bars[0].Volume = 3000

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&c, bars) {
		t.Fatal("expected no signal when the pullback depth leaves the band")
	}
}

func TestScalpingPullback_VolumeSurgeAloneWhenNoExtrema(t *testing.T) {
	e := scalpingEvaluator(3.0)
	// Monotonic ramp: no valley exists anywhere in the window.
	bars := upBars(20, 10_000, 0.5, 1000)
	bars[0].Volume = 3000

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if !e.Evaluate(&c, bars) {
		t.Fatal("expected the volume surge alone to qualify without extrema")
	}

	quiet := upBars(20, 10_000, 0.5, 1000) // no surge either
	if e.Evaluate(&c, quiet) {
		t.Fatal("expected no signal without extrema or surge")
	}
}

func TestLastPeakValley_FindsTheShape(t *testing.T) {
	bars := barsFromCloses(1000, pullbackCloses()...)
	peak, valley, age, ok := lastPeakValley(bars)
	if !ok {
		t.Fatal("expected to find a peak/valley pair")
	}
	if peak != 10600 || valley != 10350 {
		t.Fatalf("unexpected extrema: peak=%v valley=%v", peak, valley)
	}
	if age != 4 {
		t.Fatalf("expected the valley 4 bars back, got %d", age)
	}
}

func TestLastPeakValley_NoneOnMonotonicSeries(t *testing.T) {
	bars := upBars(20, 10_000, 0.5, 1000)
	if _, _, _, ok := lastPeakValley(bars); ok {
		t.Fatal("expected no extrema on a monotonic ramp")
	}
}
