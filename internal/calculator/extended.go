package calculator

import (
	"math"

	"github.com/markcheno/go-talib"

	"MarketAnalyst/internal/model"
)

// Extended indicator parameters.
const (
	BollingerPeriod = 20
	BollingerStdDev = 2.0
	ATRPeriod       = 14
	VROCPeriod      = 12
	SARAcceleration = 0.02
	SARMaximum      = 0.2
)

// lookbackNaN overwrites the warm-up slots that talib leaves as zero.
// If the series is too short for the lookback the whole output is NaN.
func lookbackNaN(n, lookback int, compute func() []float64) []float64 {
	if n <= lookback {
		return nanSeries(n)
	}
	out := compute()
	if len(out) != n {
		return nanSeries(n)
	}
	for i := 0; i < lookback; i++ {
		out[i] = math.NaN()
	}
	return out
}

// computeExtended adds Bollinger Bands, ATR, OBV, VROC and Parabolic SAR.
func computeExtended(cols map[string][]float64, highs, lows, closes, volumes []float64) {
	n := len(closes)

	var upper, lower []float64
	if n > BollingerPeriod-1 {
		upper, _, lower = talib.BBands(closes, BollingerPeriod, BollingerStdDev, BollingerStdDev, talib.SMA)
	}
	cols[model.ColBollingerHigh] = lookbackNaN(n, BollingerPeriod-1, func() []float64 { return upper })
	cols[model.ColBollingerLow] = lookbackNaN(n, BollingerPeriod-1, func() []float64 { return lower })

	cols[model.ColATR] = lookbackNaN(n, ATRPeriod, func() []float64 {
		return talib.Atr(highs, lows, closes, ATRPeriod)
	})
	cols[model.ColOBV] = lookbackNaN(n, 0, func() []float64 {
		return talib.Obv(closes, volumes)
	})
	cols[model.ColVROC] = lookbackNaN(n, VROCPeriod, func() []float64 {
		return talib.Roc(volumes, VROCPeriod)
	})
	cols[model.ColParabolicSAR] = lookbackNaN(n, 1, func() []float64 {
		return talib.Sar(highs, lows, SARAcceleration, SARMaximum)
	})
}
