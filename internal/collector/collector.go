package collector

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/strategy"
)

// MinRecommendedRows is the history length below which most indicators stay undefined.
const MinRecommendedRows = 30

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher      Fetcher
	Calc         *calculator.Calculator
	LookbackDays int
	Interval     string
	Logger       *zap.Logger
	Now          func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, calc *calculator.Calculator, lookbackDays int, interval string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = calculator.New(calculator.Options{})
	}
	return &Collector{
		Fetcher:      fetcher,
		Calc:         calc,
		LookbackDays: lookbackDays,
		Interval:     interval,
		Logger:       logger,
		Now:          time.Now,
	}
}

// History fetches the configured lookback window for symbol.
func (c *Collector) History(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	end := c.Now().UTC()
	req := HistoryRequest{
		Start:    end.AddDate(0, 0, -c.LookbackDays),
		End:      end,
		Interval: c.Interval,
	}
	bars, err := c.Fetcher.FetchHistory(ctx, symbol, req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch history: no bars for %s", symbol)
	}
	return bars, nil
}

// Collect fetches market data, computes all indicators and scores the latest row.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Report, error) {
	bars, err := c.History(ctx, symbol)
	if err != nil {
		return nil, err
	}

	table, err := c.Calc.Calculate(strings.NewReader(EncodeCSV(bars)))
	if err != nil {
		return nil, err
	}
	if len(table.Rows) < MinRecommendedRows {
		c.Logger.Warn("short price history, indicators may be undefined",
			zap.String("symbol", symbol),
			zap.Int("rows", len(table.Rows)),
			zap.Int("recommended", MinRecommendedRows))
	}

	summary, err := strategy.Evaluate(table)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", symbol, err)
	}

	report := &model.Report{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		Source:      c.Fetcher.Name(),
		GeneratedAt: c.Now().UTC(),
		Table:       table,
		Latest:      LatestValues(table),
		Summary:     summary,
		Text:        c.Calc.Render(table),
	}
	c.Logger.Info("report collected",
		zap.String("symbol", symbol),
		zap.String("source", report.Source),
		zap.Int("rows", len(table.Rows)),
		zap.String("bias", string(summary.Bias)))
	return report, nil
}

// LatestValues flattens the last row into a map, omitting undefined values.
func LatestValues(table *model.IndicatorTable) map[string]float64 {
	out := make(map[string]float64)
	last, ok := table.Last()
	if !ok {
		return out
	}
	put := func(k string, v float64) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	put("Open", last.Open)
	put("High", last.High)
	put("Low", last.Low)
	put("Close", last.Close)
	put("Volume", last.Volume)
	for _, col := range table.Columns {
		put(col, last.Value(col))
	}
	return out
}
