package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/runcontext"
	"go.uber.org/zap"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/collector"
)

// NewsLimit caps headlines returned by stock_news.
const NewsLimit = 10

// Toolbox implements the functions exposed to the agent.
type Toolbox struct {
	Fetcher collector.Fetcher
	Calc    *calculator.Calculator
	Logger  *zap.Logger
}

type StockPriceArgs struct {
	Ticker    string `json:"ticker"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Interval  string `json:"interval"`
}

type StockNewsArgs struct {
	Ticker string `json:"ticker"`
}

type CalculatorArgs struct {
	Argument string `json:"argument"`
}

func parseDay(field, s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must look like 2024-07-14: %w", field, err)
	}
	return t, nil
}

// StockPrice fetches bars for the window and returns them as CSV.
func (tb *Toolbox) StockPrice(ctx context.Context, args StockPriceArgs) (string, error) {
	if strings.TrimSpace(args.Ticker) == "" {
		return "", fmt.Errorf("ticker is required")
	}
	start, err := parseDay("start_date", args.StartDate)
	if err != nil {
		return "", err
	}
	end, err := parseDay("end_date", args.EndDate)
	if err != nil {
		return "", err
	}
	bars, err := tb.Fetcher.FetchHistory(ctx, strings.ToUpper(args.Ticker), collector.HistoryRequest{
		Start:    start,
		End:      end,
		Interval: args.Interval,
	})
	if err != nil {
		return "", err
	}
	if len(bars) == 0 {
		return "", fmt.Errorf("no price data for %s between %s and %s", args.Ticker, args.StartDate, args.EndDate)
	}
	return collector.EncodeCSV(bars), nil
}

// StockNews returns recent headlines as a JSON array.
func (tb *Toolbox) StockNews(ctx context.Context, args StockNewsArgs) (string, error) {
	if strings.TrimSpace(args.Ticker) == "" {
		return "", fmt.Errorf("ticker is required")
	}
	items, err := tb.Fetcher.FetchNews(ctx, strings.ToUpper(args.Ticker), NewsLimit)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CalculateIndicators runs the indicator calculator over CSV text.
func (tb *Toolbox) CalculateIndicators(args CalculatorArgs) (string, error) {
	return tb.Calc.Run(args.Argument)
}

// invoke decodes arguments and reports handler errors back to the model as text.
func invoke[A any](tb *Toolbox, name string, fn func(context.Context, A) (string, error)) func(context.Context, *runcontext.Wrapper, string) (any, error) {
	return func(ctx context.Context, _ *runcontext.Wrapper, arguments string) (any, error) {
		var args A
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err), nil
		}
		out, err := fn(ctx, args)
		if err != nil {
			tb.Logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
			return "Error: " + err.Error(), nil
		}
		tb.Logger.Debug("tool call", zap.String("tool", name), zap.Int("output_bytes", len(out)))
		return out, nil
	}
}

func stringProp(title, description string) map[string]any {
	return map[string]any{"title": title, "type": "string", "description": description}
}

func objectSchema(title string, props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"title":                title,
		"type":                 "object",
		"required":             required,
		"additionalProperties": false,
		"properties":           props,
	}
}

// Tools returns the function tools bound to tb.
func (tb *Toolbox) Tools() []agents.Tool {
	if tb.Logger == nil {
		tb.Logger = zap.NewNop()
	}
	stockPrice := agents.FunctionTool{
		Name: "stock_price",
		Description: "Useful to get stock price data as CSV. " +
			"ticker examples: NVDA, 036460.KS. start_date and end_date look like 2024-07-14. " +
			"interval is one of 1m, 2m, 5m, 15m, 30m, 60m, 90m, 1h, 1d, 5d, 1wk, 1mo, 3mo. " +
			"With interval 1d at most 2 months are returned per call; with 1wk at most 1 year.",
		ParamsJSONSchema: objectSchema("stock_price_args", map[string]any{
			"ticker":     stringProp("Ticker", "Stock ticker symbol"),
			"start_date": stringProp("Start Date", "First day, YYYY-MM-DD"),
			"end_date":   stringProp("End Date", "Day after the last day, YYYY-MM-DD"),
			"interval":   stringProp("Interval", "Bar interval"),
		}, "ticker", "start_date", "end_date", "interval"),
		OnInvokeTool: invoke(tb, "stock_price", tb.StockPrice),
	}
	stockNews := agents.FunctionTool{
		Name:        "stock_news",
		Description: "Useful to get news about a stock. The input should be a ticker, for example NVDA, 036460.KS.",
		ParamsJSONSchema: objectSchema("stock_news_args", map[string]any{
			"ticker": stringProp("Ticker", "Stock ticker symbol"),
		}, "ticker"),
		OnInvokeTool: invoke(tb, "stock_news", tb.StockNews),
	}
	calc := agents.FunctionTool{
		Name: "technical_indicator_calculator",
		Description: "Calculates SMA_20, EMA_20, RSI, MACD, MACD_Signal, Stochastic_Oscillator and Williams_%R " +
			"from CSV price data with Date, Open, High, Low, Close and Volume columns, " +
			"and returns the most recent rows. Provide at least 30 data points.",
		ParamsJSONSchema: objectSchema("technical_indicator_calculator_args", map[string]any{
			"argument": stringProp("Argument", "CSV price data as returned by stock_price"),
		}, "argument"),
		OnInvokeTool: invoke(tb, "technical_indicator_calculator", func(_ context.Context, a CalculatorArgs) (string, error) {
			return tb.CalculateIndicators(a)
		}),
	}
	return []agents.Tool{stockPrice, stockNews, calc}
}
