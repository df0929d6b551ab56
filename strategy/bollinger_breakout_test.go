package strategy

import "testing"

func bollingerEvaluator() *Evaluator {
	cfg := testConfig()
	cfg.BollingerBreakout.Enabled = true
	return newTestEvaluator(cfg)
}

func TestBollingerBreakout_SignalsOnRisingSurge(t *testing.T) {
	e := bollingerEvaluator()
	bars := upBars(20, 10_000, 0.5, 1000)
	bars[0].Volume = 2500 // 2.5x the trailing average

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if !e.Evaluate(&c, bars) {
		t.Fatal("expected a band-escape signal on a rising bar with surge")
	}
}

func TestBollingerBreakout_RejectsSpentOpenBounce(t *testing.T) {
	e := bollingerEvaluator()
	bars := upBars(20, 10_000, 0.5, 1000)
	bars[0].Volume = 2500
	bars[0].Open = bars[0].Close * 0.9 // ~11% bounce off the open

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&c, bars) {
		t.Fatal("expected no signal when the bar already bounced off its open")
	}
}

func TestBollingerBreakout_RejectsWithoutSurge(t *testing.T) {
	e := bollingerEvaluator()
	bars := upBars(20, 10_000, 0.5, 1000) // flat volume

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&c, bars) {
		t.Fatal("expected no signal without a volume surge")
	}
}

func TestBollingerBreakout_RejectsFallingBelowMA(t *testing.T) {
	e := bollingerEvaluator()

	// Chronologically falling closes: below the short MA and no rise.
	closes := make([]float64, 20)
	c := 10_000.0
	for i := range closes {
		closes[i] = c
		c *= 0.995
	}
	bars := barsFromCloses(1000, closes...)
	bars[0].Volume = 2500

	cand := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&cand, bars) {
		t.Fatal("expected no signal on a falling series even with surge")
	}
}
