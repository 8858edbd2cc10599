package calculator

import "math"

// Lookback used by the stochastic oscillator and Williams %R.
const OscillatorWindow = 14

// Stochastic computes %K = 100 * (close - lowest low) / (highest high - lowest low)
// over the trailing window. A flat window yields NaN.
func Stochastic(highs, lows, closes []float64, window int) []float64 {
	hh := rollingMax(highs, window)
	ll := rollingMin(lows, window)
	out := nanSeries(len(closes))
	for i := range closes {
		rng := hh[i] - ll[i]
		if math.IsNaN(rng) || rng == 0 {
			continue
		}
		out[i] = 100 * (closes[i] - ll[i]) / rng
	}
	return out
}

// WilliamsR computes -100 * (highest high - close) / (highest high - lowest low)
// over the trailing window. A flat window yields NaN.
func WilliamsR(highs, lows, closes []float64, window int) []float64 {
	hh := rollingMax(highs, window)
	ll := rollingMin(lows, window)
	out := nanSeries(len(closes))
	for i := range closes {
		rng := hh[i] - ll[i]
		if math.IsNaN(rng) || rng == 0 {
			continue
		}
		out[i] = -100 * (hh[i] - closes[i]) / rng
	}
	return out
}
