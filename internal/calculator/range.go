package calculator

import (
	"errors"
	"math"

	"MarketAnalyst/internal/model"
)

// PeriodRange scans the most recent n rows and returns the highest high and
// lowest low. n <= 0 scans every row.
func PeriodRange(rows []model.IndicatorRow, n int) (high, low float64, err error) {
	if len(rows) == 0 {
		return 0, 0, errors.New("no rows provided")
	}
	start := 0
	if n > 0 && len(rows) > n {
		start = len(rows) - n
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range rows[start:] {
		if r.High > high {
			high = r.High
		}
		if r.Low < low {
			low = r.Low
		}
	}
	return high, low, nil
}

// RangePosition returns where price sits within [low, high] as 0.0~1.0.
func RangePosition(price, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (price - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
