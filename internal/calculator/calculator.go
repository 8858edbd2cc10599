package calculator

import (
	"fmt"
	"io"
	"strings"

	"MarketAnalyst/internal/model"
)

// DefaultTailRows is the number of trailing rows rendered in a report.
const DefaultTailRows = 5

// Indicator windows for the core columns.
const (
	MAWindow  = 20
	RSIWindow = 14
)

// ReportHeader precedes the rendered indicator table.
const ReportHeader = "Calculated Indicators:"

// Options tunes a Calculator.
type Options struct {
	// TailRows is the number of most recent rows rendered. Zero means DefaultTailRows.
	TailRows int
	// Extended adds Bollinger Bands, ATR, OBV, VROC and Parabolic SAR columns.
	Extended bool
}

// Calculator turns raw OHLCV rows into a daily indicator table.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	opts Options
}

// New creates a Calculator.
func New(opts Options) *Calculator {
	if opts.TailRows <= 0 {
		opts.TailRows = DefaultTailRows
	}
	return &Calculator{opts: opts}
}

// TailRows returns the configured number of rendered rows.
func (c *Calculator) TailRows() int { return c.opts.TailRows }

// Run parses CSV text, computes indicators and renders the report.
func (c *Calculator) Run(csvText string) (string, error) {
	table, err := c.Calculate(strings.NewReader(csvText))
	if err != nil {
		return "", err
	}
	return c.Render(table), nil
}

// Calculate parses CSV from r and returns the full indicator table.
func (c *Calculator) Calculate(r io.Reader) (*model.IndicatorTable, error) {
	bars, err := ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("parse price data: %w", err)
	}
	return c.Compute(bars), nil
}

// Compute resamples bars to daily frequency, drops incomplete days and
// derives the indicator columns.
func (c *Calculator) Compute(bars []model.OHLCV) *model.IndicatorTable {
	daily := DropIncomplete(Resample(bars))

	n := len(daily)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range daily {
		highs[i], lows[i], closes[i], volumes[i] = b.High, b.Low, b.Close, b.Volume
	}

	cols := make(map[string][]float64, len(model.CoreColumns)+len(model.ExtendedColumns))
	cols[model.ColSMA20] = SMA(closes, MAWindow)
	cols[model.ColEMA20] = EMA(closes, MAWindow, 0)
	cols[model.ColRSI] = RSI(closes, RSIWindow)
	cols[model.ColMACD], cols[model.ColMACDSignal] = MACD(closes, MACDFast, MACDSlow, MACDSignal)
	cols[model.ColStochastic] = Stochastic(highs, lows, closes, OscillatorWindow)
	cols[model.ColWilliamsR] = WilliamsR(highs, lows, closes, OscillatorWindow)

	columns := append([]string(nil), model.CoreColumns...)
	if c.opts.Extended {
		computeExtended(cols, highs, lows, closes, volumes)
		columns = append(columns, model.ExtendedColumns...)
	}

	table := &model.IndicatorTable{Columns: columns, Rows: make([]model.IndicatorRow, n)}
	for i, b := range daily {
		values := make(map[string]float64, len(columns))
		for _, name := range columns {
			values[name] = cols[name][i]
		}
		table.Rows[i] = model.IndicatorRow{OHLCV: b, Values: values}
	}
	return table
}

// Render formats the last TailRows rows of table under ReportHeader.
func (c *Calculator) Render(table *model.IndicatorTable) string {
	return "\n" + ReportHeader + "\n" + FormatTable(table.Columns, table.Tail(c.opts.TailRows))
}
