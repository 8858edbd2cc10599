package calculator

import (
	"math"
	"strconv"
	"strings"

	"MarketAnalyst/internal/model"
)

const maxDecimals = 6

var priceColumns = []string{"Open", "High", "Low", "Close", "Volume"}

// FormatTable renders rows as a fixed-width text table with a Date index.
// Every column uses a single precision wide enough for its most precise value;
// missing values print as NaN.
func FormatTable(indicatorCols []string, rows []model.IndicatorRow) string {
	headers := append(append([]string(nil), priceColumns...), indicatorCols...)
	if len(rows) == 0 {
		return "Empty DataFrame\nColumns: [" + strings.Join(headers, ", ") + "]\nIndex: []"
	}

	columns := make([][]float64, len(headers))
	for i := range columns {
		columns[i] = make([]float64, len(rows))
	}
	for r, row := range rows {
		columns[0][r] = row.Open
		columns[1][r] = row.High
		columns[2][r] = row.Low
		columns[3][r] = row.Close
		columns[4][r] = row.Volume
		for i, name := range indicatorCols {
			columns[5+i][r] = row.Value(name)
		}
	}

	cells := make([][]string, len(headers))
	widths := make([]int, len(headers))
	for i, col := range columns {
		cells[i] = formatColumn(col, headers[i] == "Volume")
		widths[i] = len(headers[i])
		for _, s := range cells[i] {
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	dates := make([]string, len(rows))
	indexWidth := len("Date")
	for r, row := range rows {
		dates[r] = row.Time.Format("2006-01-02")
		if len(dates[r]) > indexWidth {
			indexWidth = len(dates[r])
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", indexWidth))
	for i, h := range headers {
		b.WriteString("  ")
		b.WriteString(padLeft(h, widths[i]))
	}
	b.WriteString("\nDate")
	for r := range rows {
		b.WriteString("\n")
		b.WriteString(padRight(dates[r], indexWidth))
		for i := range headers {
			b.WriteString("  ")
			b.WriteString(padLeft(cells[i][r], widths[i]))
		}
	}
	return b.String()
}

func formatColumn(values []float64, integral bool) []string {
	if integral {
		for _, v := range values {
			if math.IsNaN(v) || v != math.Trunc(v) {
				integral = false
				break
			}
		}
	}
	decimals := 0
	if !integral {
		decimals = 1
		for _, v := range values {
			if math.IsNaN(v) {
				continue
			}
			s := strconv.FormatFloat(v, 'f', maxDecimals, 64)
			s = strings.TrimRight(s, "0")
			if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > decimals {
				decimals = len(s) - dot - 1
			}
		}
	}
	out := make([]string, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = "NaN"
			continue
		}
		out[i] = strconv.FormatFloat(v, 'f', decimals, 64)
	}
	return out
}

func padLeft(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return strings.Repeat(" ", w-len(s)) + s
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
