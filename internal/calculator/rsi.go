package calculator

import "math"

// RSI computes the relative strength index. Up and down moves are smoothed
// with alpha = 1/period; the first row contributes a zero move, so the first
// defined value is at index period-1. When the average loss is zero the RSI is 100.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	if period <= 0 || n == 0 {
		return nanSeries(n)
	}
	up := make([]float64, n)
	down := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			up[i] = change
		} else {
			down[i] = -change
		}
	}

	alpha := 1.0 / float64(period)
	avgGain := EWM(up, alpha, period)
	avgLoss := EWM(down, alpha, period)

	out := nanSeries(n)
	for i := range out {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
