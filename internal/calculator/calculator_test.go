package calculator

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// dailyCSV builds consecutive daily rows around the given closes.
func dailyCSV(closes []float64) string {
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume,Dividends,Stock Splits\n")
	for i, c := range closes {
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,1000,0.0,0.0\n",
			day0.AddDate(0, 0, i).Format("2006-01-02"), c-0.5, c+1, c-1, c)
	}
	return b.String()
}

func rising(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestRun_MonotonicUptrend(t *testing.T) {
	calc := New(Options{})
	out, err := calc.Run(dailyCSV(rising(30, 100)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "\nCalculated Indicators:\n"))
	lines := strings.Split(strings.TrimPrefix(out, "\n"), "\n")
	// header line, column line, index name line, five rows
	require.Len(t, lines, 8)
	assert.Equal(t, "Date", lines[2])
	assert.True(t, strings.HasPrefix(lines[7], "2024-01-30"))
	assert.Contains(t, lines[1], "Williams_%R")

	table, err := calc.Calculate(strings.NewReader(dailyCSV(rising(30, 100))))
	require.NoError(t, err)
	last, ok := table.Last()
	require.True(t, ok)
	assert.InDelta(t, 119.5, last.Value(model.ColSMA20), 1e-9)
	assert.Greater(t, last.Value(model.ColRSI), 50.0)
	assert.Greater(t, last.Value(model.ColMACD), 0.0)
}

func TestCompute_SMAMatchesWindowMean(t *testing.T) {
	closes := []float64{
		12, 15, 11, 19, 14, 13, 18, 17, 16, 20,
		22, 21, 19, 23, 25, 24, 26, 22, 21, 27,
		28, 26, 30, 29, 31,
	}
	table, err := New(Options{}).Calculate(strings.NewReader(dailyCSV(closes)))
	require.NoError(t, err)
	require.Len(t, table.Rows, len(closes))

	for i, row := range table.Rows {
		if i < 19 {
			assert.True(t, math.IsNaN(row.Value(model.ColSMA20)), "row %d", i)
			continue
		}
		sum := 0.0
		for _, c := range closes[i-19 : i+1] {
			sum += c
		}
		assert.InDelta(t, sum/20, row.Value(model.ColSMA20), 1e-9, "row %d", i)
	}
}

func TestCompute_EMARecursion(t *testing.T) {
	closes := []float64{50, 52, 49, 55, 53, 58, 60, 57}
	table, err := New(Options{}).Calculate(strings.NewReader(dailyCSV(closes)))
	require.NoError(t, err)

	assert.Equal(t, closes[0], table.Rows[0].Value(model.ColEMA20))
	for i := 1; i < len(closes); i++ {
		prev := table.Rows[i-1].Value(model.ColEMA20)
		want := prev + (2.0/21.0)*(closes[i]-prev)
		assert.InDelta(t, want, table.Rows[i].Value(model.ColEMA20), 1e-12, "row %d", i)
	}
}

func TestRun_NonNumericCloseFails(t *testing.T) {
	csv := "Date,Open,High,Low,Close,Volume\n" +
		"2024-01-01,1,2,0.5,1.5,100\n" +
		"2024-01-02,1,2,0.5,N/A,100\n"
	out, err := New(Options{}).Run(csv)
	require.Error(t, err)
	assert.Empty(t, out)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Close", pe.Column)
	assert.Equal(t, "N/A", pe.Value)
	assert.Equal(t, 3, pe.Line)
}

func TestRun_BadDateFails(t *testing.T) {
	csv := "Date,Open,High,Low,Close,Volume\nyesterday,1,2,0.5,1.5,100\n"
	_, err := New(Options{}).Run(csv)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Date", pe.Column)
}

func TestRun_MissingColumnFails(t *testing.T) {
	_, err := New(Options{}).Run("Date,Open,High,Low,Close\n2024-01-01,1,2,0.5,1.5\n")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = New(Options{}).Run("")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestCompute_ShortHistoryLeavesIndicatorsUndefined(t *testing.T) {
	table, err := New(Options{}).Calculate(strings.NewReader(dailyCSV(rising(10, 100))))
	require.NoError(t, err)
	require.Len(t, table.Rows, 10)

	for i, row := range table.Rows {
		for _, col := range []string{model.ColSMA20, model.ColRSI, model.ColMACD, model.ColMACDSignal, model.ColStochastic, model.ColWilliamsR} {
			assert.True(t, math.IsNaN(row.Value(col)), "row %d %s", i, col)
		}
		assert.False(t, math.IsNaN(row.Value(model.ColEMA20)), "row %d EMA_20", i)
	}

	out, err := New(Options{}).Run(dailyCSV(rising(10, 100)))
	require.NoError(t, err)
	assert.Contains(t, out, "NaN")
}

func TestCompute_MACDWarmup(t *testing.T) {
	table, err := New(Options{}).Calculate(strings.NewReader(dailyCSV(rising(40, 100))))
	require.NoError(t, err)

	assert.True(t, math.IsNaN(table.Rows[24].Value(model.ColMACD)))
	assert.False(t, math.IsNaN(table.Rows[25].Value(model.ColMACD)))
	assert.True(t, math.IsNaN(table.Rows[32].Value(model.ColMACDSignal)))
	assert.False(t, math.IsNaN(table.Rows[33].Value(model.ColMACDSignal)))
	assert.True(t, math.IsNaN(table.Rows[12].Value(model.ColRSI)))
	assert.Equal(t, 100.0, table.Rows[13].Value(model.ColRSI))
}

func TestCompute_DropsIncompleteRows(t *testing.T) {
	csv := "Date,Open,High,Low,Close,Volume\n" +
		"2024-01-01,1,2,0.5,1.5,100\n" +
		"2024-01-02,1,,0.5,1.5,100\n" +
		"2024-01-03,1,2,0.5,1.5,100\n"
	table, err := New(Options{}).Calculate(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, day0, table.Rows[0].Time)
	assert.Equal(t, day0.AddDate(0, 0, 2), table.Rows[1].Time)
}

func TestCompute_ExtendedColumns(t *testing.T) {
	calc := New(Options{Extended: true})
	table, err := calc.Calculate(strings.NewReader(dailyCSV(rising(40, 100))))
	require.NoError(t, err)

	assert.Equal(t, append(append([]string(nil), model.CoreColumns...), model.ExtendedColumns...), table.Columns)
	last, _ := table.Last()
	assert.Greater(t, last.Value(model.ColBollingerHigh), last.Value(model.ColSMA20))
	assert.Less(t, last.Value(model.ColBollingerLow), last.Value(model.ColSMA20))
	assert.Greater(t, last.Value(model.ColATR), 0.0)
	assert.Greater(t, last.Value(model.ColOBV), 0.0)
	assert.True(t, math.IsNaN(table.Rows[0].Value(model.ColVROC)))
	assert.True(t, math.IsNaN(table.Rows[13].Value(model.ColATR)))

	out := calc.Render(table)
	assert.Contains(t, out, "Parabolic_SAR")
}

func TestCompute_ExtendedShortHistory(t *testing.T) {
	table, err := New(Options{Extended: true}).Calculate(strings.NewReader(dailyCSV(rising(3, 100))))
	require.NoError(t, err)
	for _, row := range table.Rows {
		assert.True(t, math.IsNaN(row.Value(model.ColBollingerHigh)))
		assert.True(t, math.IsNaN(row.Value(model.ColATR)))
	}
}

func TestRender_TailRows(t *testing.T) {
	calc := New(Options{TailRows: 2})
	out, err := calc.Run(dailyCSV(rising(30, 100)))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimPrefix(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[3], "2024-01-29"))
	assert.True(t, strings.HasPrefix(lines[4], "2024-01-30"))
}
