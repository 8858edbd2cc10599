package calculator

import "math"

// nanSeries returns a slice of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the trailing simple moving average. The first period-1 values are NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EWM computes a recursive exponentially weighted mean with smoothing factor
// alpha: the first present value seeds the mean and every later value blends
// in as mean += alpha*(v-mean). Output is NaN until minPeriods present values
// have been seen. Leading NaN inputs are skipped.
func EWM(values []float64, alpha float64, minPeriods int) []float64 {
	out := nanSeries(len(values))
	var mean float64
	seen := 0
	for i, v := range values {
		if math.IsNaN(v) {
			if seen >= minPeriods && seen > 0 {
				out[i] = mean
			}
			continue
		}
		if seen == 0 {
			mean = v
		} else {
			mean += alpha * (v - mean)
		}
		seen++
		if seen >= minPeriods {
			out[i] = mean
		}
	}
	return out
}

// EMA computes the span-based exponential moving average (alpha = 2/(span+1)),
// seeded with the first value rather than an SMA.
func EMA(values []float64, span, minPeriods int) []float64 {
	if span <= 0 {
		return nanSeries(len(values))
	}
	return EWM(values, 2.0/float64(span+1), minPeriods)
}

// rollingMax returns the max over each trailing window, NaN until the window is full.
func rollingMax(values []float64, window int) []float64 {
	return rolling(values, window, math.Max)
}

// rollingMin returns the min over each trailing window, NaN until the window is full.
func rollingMin(values []float64, window int) []float64 {
	return rolling(values, window, math.Min)
}

func rolling(values []float64, window int, pick func(a, b float64) float64) []float64 {
	out := nanSeries(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		acc := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			acc = pick(acc, values[j])
		}
		out[i] = acc
	}
	return out
}
