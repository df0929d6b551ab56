// Package indicator provides pure functions over ordered price-bar
// sequences. All inputs are ordered newest-first (bars[0] is the most
// recent bar), matching the fetch order of the marketdata gateway.
package indicator

import (
	"math"

	"github.com/kstocklab/kats/types"
)

// Field selects which bar component a moving average is computed over.
type Field int

const (
	Close Field = iota
	Open
	High
	Low
	Volume
)

func fieldValue(b types.PriceBar, f Field) float64 {
	switch f {
	case Open:
		return b.Open
	case High:
		return b.High
	case Low:
		return b.Low
	case Volume:
		return b.Volume
	default:
		return b.Close
	}
}

// RSI computes a single-window relative strength estimate over the
// most recent period+1 bars. This is deliberately not a rolling or
// Wilder-smoothed RSI: gains and losses are averaged over one window
// only. Returns the neutral value 50 when fewer than period+1 bars
// exist, and 100 when there are no losses in the window.
func RSI(bars []types.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 50
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		diff := bars[i-1].Close - bars[i].Close
		if diff > 0 {
			gain += diff
		} else {
			loss += -diff
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MovingAverage slides a period-wide window across the bars, starting
// from the oldest period bars and shifting toward the present. The
// result is ordered oldest window first; the last element is the
// average over the newest period bars. Returns nil when fewer than
// period bars are supplied.
func MovingAverage(bars []types.PriceBar, period int, field Field) []float64 {
	n := len(bars)
	if period <= 0 || n < period {
		return nil
	}
	out := make([]float64, 0, n-period+1)
	for k := 0; k <= n-period; k++ {
		start := n - period - k
		sum := 0.0
		for i := start; i < start+period; i++ {
			sum += fieldValue(bars[i], field)
		}
		out = append(out, sum/float64(period))
	}
	return out
}

// Band is one Bollinger window position. Upper >= Middle >= Lower
// holds for every emitted band.
type Band struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands computes mean +/- multiplier*sigma envelopes over the
// typical price (high+low+close)/3, using the population standard
// deviation per window. Ordering follows MovingAverage: oldest window
// first, newest last. Returns nil when fewer than period bars exist.
func BollingerBands(bars []types.PriceBar, period int, multiplier float64) []Band {
	n := len(bars)
	if period <= 0 || n < period {
		return nil
	}
	typ := make([]float64, n)
	for i, b := range bars {
		typ[i] = (b.High + b.Low + b.Close) / 3
	}
	out := make([]Band, 0, n-period+1)
	for k := 0; k <= n-period; k++ {
		start := n - period - k
		sum := 0.0
		for i := start; i < start+period; i++ {
			sum += typ[i]
		}
		mean := sum / float64(period)
		varSum := 0.0
		for i := start; i < start+period; i++ {
			d := typ[i] - mean
			varSum += d * d
		}
		sigma := math.Sqrt(varSum / float64(period))
		out = append(out, Band{
			Upper:  mean + multiplier*sigma,
			Middle: mean,
			Lower:  mean - multiplier*sigma,
		})
	}
	return out
}

// RoundToTickSize floors a price to the KRX tick grid. Idempotent:
// rounding an already-rounded price is a no-op, and the result never
// exceeds the input.
func RoundToTickSize(price float64) float64 {
	if price <= 0 {
		return 0
	}
	step := 1000.0
	switch {
	case price < 1_000:
		step = 1
	case price < 5_000:
		step = 5
	case price < 10_000:
		step = 10
	case price < 50_000:
		step = 50
	case price < 100_000:
		step = 100
	case price < 500_000:
		step = 500
	}
	return math.Floor(price/step) * step
}
