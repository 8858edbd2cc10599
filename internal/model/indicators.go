package model

import "math"

// Indicator column names, in output order.
const (
	ColSMA20         = "SMA_20"
	ColEMA20         = "EMA_20"
	ColRSI           = "RSI"
	ColMACD          = "MACD"
	ColMACDSignal    = "MACD_Signal"
	ColStochastic    = "Stochastic_Oscillator"
	ColWilliamsR     = "Williams_%R"
	ColBollingerHigh = "Bollinger_High"
	ColBollingerLow  = "Bollinger_Low"
	ColATR           = "ATR"
	ColOBV           = "OBV"
	ColVROC          = "VROC"
	ColParabolicSAR  = "Parabolic_SAR"
)

// CoreColumns are always computed.
var CoreColumns = []string{
	ColSMA20, ColEMA20, ColRSI, ColMACD, ColMACDSignal, ColStochastic, ColWilliamsR,
}

// ExtendedColumns are computed only when extended indicators are enabled.
var ExtendedColumns = []string{
	ColBollingerHigh, ColBollingerLow, ColATR, ColOBV, ColVROC, ColParabolicSAR,
}

// IndicatorRow is a daily bar plus its derived indicator values.
// Values not yet defined are NaN.
type IndicatorRow struct {
	OHLCV
	Values map[string]float64
}

// Value returns the named indicator, or NaN if absent.
func (r IndicatorRow) Value(name string) float64 {
	if v, ok := r.Values[name]; ok {
		return v
	}
	return math.NaN()
}

// IndicatorTable is the ordered result of an indicator calculation.
type IndicatorTable struct {
	Columns []string
	Rows    []IndicatorRow
}

// Tail returns the last n rows (all rows if n <= 0 or n exceeds the length).
func (t *IndicatorTable) Tail(n int) []IndicatorRow {
	if n <= 0 || n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[len(t.Rows)-n:]
}

// Last returns the most recent row and false if the table is empty.
func (t *IndicatorTable) Last() (IndicatorRow, bool) {
	if len(t.Rows) == 0 {
		return IndicatorRow{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}
