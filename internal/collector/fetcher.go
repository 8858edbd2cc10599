package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketAnalyst/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, req HistoryRequest) ([]model.OHLCV, error)
	FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error)
	Name() string
}

// HistoryRequest selects a window of bars. Zero Start/End default to the
// interval's maximum lookback ending now.
type HistoryRequest struct {
	Start    time.Time
	End      time.Time
	Interval string
}

// DefaultInterval is used when a request leaves Interval empty.
const DefaultInterval = "1d"

// Intervals accepted by the chart API.
var Intervals = []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h", "1d", "5d", "1wk", "1mo", "3mo"}

// maxLookback caps how far back a request may reach for a given interval.
var maxLookback = map[string]time.Duration{
	"1d":  60 * 24 * time.Hour,
	"1wk": 365 * 24 * time.Hour,
}

var ErrUnknownInterval = errors.New("unknown interval")

// ValidateRequest fills defaults, checks the interval and clamps the window
// to the interval's maximum lookback.
func ValidateRequest(req HistoryRequest, now time.Time) (HistoryRequest, error) {
	if req.Interval == "" {
		req.Interval = DefaultInterval
	}
	known := false
	for _, iv := range Intervals {
		if iv == req.Interval {
			known = true
			break
		}
	}
	if !known {
		return req, fmt.Errorf("%w: %q", ErrUnknownInterval, req.Interval)
	}
	if req.End.IsZero() {
		req.End = now
	}
	limit, capped := maxLookback[req.Interval]
	if req.Start.IsZero() {
		if capped {
			req.Start = req.End.Add(-limit)
		} else {
			req.Start = req.End.AddDate(0, 0, -7)
		}
	}
	if !req.Start.Before(req.End) {
		return req, fmt.Errorf("start %s must be before end %s",
			req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))
	}
	if capped && req.End.Sub(req.Start) > limit {
		req.Start = req.End.Add(-limit)
	}
	return req, nil
}
