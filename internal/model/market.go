package model

import (
	"math"
	"time"
)

// OHLCV represents a single price bar. A missing field holds NaN.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Complete reports whether every price and volume field is present.
func (b OHLCV) Complete() bool {
	return !math.IsNaN(b.Open) && !math.IsNaN(b.High) && !math.IsNaN(b.Low) &&
		!math.IsNaN(b.Close) && !math.IsNaN(b.Volume)
}

// PriceSeries holds bars for one symbol, ascending by time.
type PriceSeries struct {
	Symbol    string
	Interval  string
	Bars      []OHLCV
	FetchedAt time.Time
}

// NewsItem is a headline returned by a news provider.
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}
