package collector

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"

	"MarketAnalyst/internal/model"
)

// CSVHeader mirrors the column layout of a yfinance history export.
var CSVHeader = []string{"Date", "Open", "High", "Low", "Close", "Volume", "Dividends", "Stock Splits"}

// EncodeCSV renders bars in the layout the indicator calculator consumes.
// Missing values are written as empty cells.
func EncodeCSV(bars []model.OHLCV) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(CSVHeader)
	for _, b := range bars {
		_ = w.Write([]string{
			b.Time.Format("2006-01-02 15:04:05-07:00"),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
			"0.0",
			"0.0",
		})
	}
	w.Flush()
	return buf.String()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
