package calculator

import (
	"math"
	"sort"
	"time"

	"MarketAnalyst/internal/model"
)

// civilDay truncates t to its calendar day in t's own zone, expressed as UTC midnight.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b, both UTC midnights.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / 86400)
}

// Resample re-grids bars onto one row per calendar day spanning the input range.
// Open is the first present value of the day, High the max, Low the min,
// Close the last present value and Volume the sum. Days without data keep NaN
// prices and zero volume.
func Resample(bars []model.OHLCV) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	sorted := make([]model.OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	first := civilDay(sorted[0].Time)
	last := civilDay(sorted[len(sorted)-1].Time)
	days := daysBetween(first, last) + 1

	out := make([]model.OHLCV, days)
	for i := range out {
		out[i] = model.OHLCV{
			Time:  first.AddDate(0, 0, i),
			Open:  math.NaN(),
			High:  math.NaN(),
			Low:   math.NaN(),
			Close: math.NaN(),
		}
	}

	for _, b := range sorted {
		i := daysBetween(first, civilDay(b.Time))
		row := &out[i]
		if math.IsNaN(row.Open) {
			row.Open = b.Open
		}
		if !math.IsNaN(b.Close) {
			row.Close = b.Close
		}
		if !math.IsNaN(b.High) && (math.IsNaN(row.High) || b.High > row.High) {
			row.High = b.High
		}
		if !math.IsNaN(b.Low) && (math.IsNaN(row.Low) || b.Low < row.Low) {
			row.Low = b.Low
		}
		if !math.IsNaN(b.Volume) {
			row.Volume += b.Volume
		}
	}
	return out
}

// DropIncomplete removes rows with any missing OHLCV field.
func DropIncomplete(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if b.Complete() {
			out = append(out, b)
		}
	}
	return out
}
