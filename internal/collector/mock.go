package collector

import (
	"context"
	"fmt"
	"time"

	"MarketAnalyst/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	News  []model.NewsItem
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

// FetchHistory returns Bars when set, otherwise one synthetic daily bar per
// day of the requested window, drifting gently around Price.
func (m *MockFetcher) FetchHistory(_ context.Context, _ string, req HistoryRequest) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	end := req.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := req.Start
	if start.IsZero() {
		start = end.AddDate(0, 0, -60)
	}
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return nil, fmt.Errorf("mock: empty window")
	}
	return generateMockBars(m.Price, start, days), nil
}

func (m *MockFetcher) FetchNews(_ context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.News != nil {
		if limit > 0 && len(m.News) > limit {
			return m.News[:limit], nil
		}
		return m.News, nil
	}
	return []model.NewsItem{{
		Title:     symbol + " trades in line with the market",
		Publisher: "mock",
	}}, nil
}

func generateMockBars(basePrice float64, start time.Time, count int) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		if i%3 == 2 {
			p *= 0.997
		}
		bars[i] = model.OHLCV{
			Time:   day.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
