package strategy

import "testing"

func closingEvaluator(maxRangePct float64) *Evaluator {
	cfg := testConfig()
	cfg.ClosingAuction.Enabled = true
	cfg.ClosingAuction.MaxRangePct = maxRangePct
	return newTestEvaluator(cfg)
}

func TestClosingAuction_SignalsOnEndOfDayStrength(t *testing.T) {
	e := closingEvaluator(10.0)
	bars := upBars(20, 10_000, 0.5, 10_000)
	bars[0].Volume = 20_000 // 2x surge, ~220M notional

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if !e.Evaluate(&c, bars) {
		t.Fatal("expected a closing-auction signal on steady strength")
	}
}

func TestClosingAuction_RejectsWideIntradayRange(t *testing.T) {
	// The same ramp spans ~5.8% low-to-high over the range window, so a
	// 4% cap treats it as a whipsaw.
	e := closingEvaluator(4.0)
	bars := upBars(20, 10_000, 0.5, 10_000)
	bars[0].Volume = 20_000

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&c, bars) {
		t.Fatal("expected the range cap to reject a wide session")
	}
}

func TestClosingAuction_RejectsThinTurnover(t *testing.T) {
	e := closingEvaluator(10.0)
	bars := upBars(20, 10_000, 0.5, 100)
	bars[0].Volume = 200 // surges, but ~2.2M notional

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&c, bars) {
		t.Fatal("expected no signal below the notional floor")
	}
}

func TestClosingAuction_RejectsWithoutSurge(t *testing.T) {
	e := closingEvaluator(10.0)
	bars := upBars(20, 10_000, 0.5, 10_000)

	c := candidateAt(bars[0].Close, 10_000, 3.0, 0, 50_000)
	if e.Evaluate(&c, bars) {
		t.Fatal("expected no signal without a volume surge")
	}
}
