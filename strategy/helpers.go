package strategy

import (
	"github.com/kstocklab/kats/indicator"
	"github.com/kstocklab/kats/types"
)

// Bars are newest-first everywhere in this package: bars[0] is the
// current bar, bars[1] the previous one.

// barRisePct is the close-to-close rise of cur over prev, in percent.
func barRisePct(cur, prev types.PriceBar) float64 {
	if prev.Close <= 0 {
		return 0
	}
	return (cur.Close - prev.Close) / prev.Close * 100
}

// risePctOver is the rise of the current close over the close n bars
// back, in percent. Returns 0 when the slice is too short.
func risePctOver(bars []types.PriceBar, n int) float64 {
	if n <= 0 || len(bars) <= n || bars[n].Close <= 0 {
		return 0
	}
	return (bars[0].Close - bars[n].Close) / bars[n].Close * 100
}

// trailingAvgVolume averages the volume of the window bars preceding
// the current one (bars[1..window]).
func trailingAvgVolume(bars []types.PriceBar, window int) float64 {
	if window <= 0 || len(bars) < window+1 {
		return 0
	}
	sum := 0.0
	for i := 1; i <= window; i++ {
		sum += bars[i].Volume
	}
	return sum / float64(window)
}

// volumeSurge reports whether the current bar's volume exceeds the
// trailing average by the given ratio.
func volumeSurge(bars []types.PriceBar, window int, ratio float64) bool {
	avg := trailingAvgVolume(bars, window)
	return avg > 0 && bars[0].Volume >= avg*ratio
}

// currentMA is the moving average over the newest period bars, or 0
// when there are not enough bars.
func currentMA(bars []types.PriceBar, period int) float64 {
	ma := indicator.MovingAverage(bars, period, indicator.Close)
	if len(ma) == 0 {
		return 0
	}
	return ma[len(ma)-1]
}

// recentHigh is the highest high over the newest window bars.
func recentHigh(bars []types.PriceBar, window int) float64 {
	if window > len(bars) {
		window = len(bars)
	}
	hi := 0.0
	for i := 0; i < window; i++ {
		if bars[i].High > hi {
			hi = bars[i].High
		}
	}
	return hi
}

// recentRange returns the highest high and lowest low over the newest
// window bars.
func recentRange(bars []types.PriceBar, window int) (hi, lo float64) {
	if window > len(bars) {
		window = len(bars)
	}
	if window == 0 {
		return 0, 0
	}
	hi, lo = bars[0].High, bars[0].Low
	for i := 1; i < window; i++ {
		if bars[i].High > hi {
			hi = bars[i].High
		}
		if bars[i].Low < lo {
			lo = bars[i].Low
		}
	}
	return hi, lo
}

// bullishRatio is the fraction of bars closing above their open over
// the newest window bars.
func bullishRatio(bars []types.PriceBar, window int) float64 {
	if window > len(bars) {
		window = len(bars)
	}
	if window == 0 {
		return 0
	}
	n := 0
	for i := 0; i < window; i++ {
		if bars[i].Close > bars[i].Open {
			n++
		}
	}
	return float64(n) / float64(window)
}

// consecutiveRises counts how many bars in a row, ending at the
// current bar, closed above the previous close.
func consecutiveRises(bars []types.PriceBar) int {
	n := 0
	for i := 0; i+1 < len(bars); i++ {
		if bars[i].Close > bars[i+1].Close {
			n++
		} else {
			break
		}
	}
	return n
}
