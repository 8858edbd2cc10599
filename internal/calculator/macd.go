package calculator

import "math"

// MACD parameters used by the report.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACD returns the MACD line (fast EMA minus slow EMA) and its signal line.
// Each EMA only becomes defined once it has seen as many values as its span.
func MACD(closes []float64, fast, slow, signal int) (line, sig []float64) {
	fastEMA := EMA(closes, fast, fast)
	slowEMA := EMA(closes, slow, slow)
	line = nanSeries(len(closes))
	for i := range closes {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			continue
		}
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig = EMA(line, signal, signal)
	return line, sig
}
