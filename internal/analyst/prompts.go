package analyst

import (
	"fmt"
	"strings"
	"time"
)

// AgentName is the display name of the analyst agent.
const AgentName = "Financial Analyst"

const backstory = `You can only get 2 months of daily price data at once with the stock_price tool.
You are good at technical analysis using indicators such as Williams %%R, RSI, EMA, MACD, Stochastic Oscillator, Fibonacci levels and more.
You collect stock price data in several calls to stay within provider limits; the maximum window per call is 2 months.
You know not all data can be analyzed at the highest resolution, so you set intervals appropriately.
When using stock_price:
    When collecting data older than 1 year, the interval must be 1mo.
    When collecting data less than a year old, the interval must be 1wk.
    When collecting recent data less than a month old, you MUST set the interval to 1d.
Use technical_indicator_calculator to get indicators for a price window.
When using technical_indicator_calculator:
    Pass the CSV returned by stock_price unchanged.
    Provide at least 30 data points; fewer leave most indicators undefined (NaN).
    Do not forget to run it on the most recent data at least once.
Today's date is %s. To include the latest session, set end_date to 2 days after today.`

// Instructions returns the system prompt for the analyst agent.
func Instructions(company string, today time.Time) string {
	goal := fmt.Sprintf("Provide every kind of technical analysis for %s in detail, based on the latest data.", company)
	return goal + "\n\n" + fmt.Sprintf(backstory, today.Format("2006-01-02"))
}

const taskTemplate = `The final answer must provide everything.
Analyze the whole stock history (max periods).
Technical analysis of {company} in weekly, monthly and yearly timeframes.
Provide detailed support and resistance levels, trendlines, and chart patterns.
Include analysis of the following technical indicators:

1. Moving Averages (weekly, monthly and yearly):
- Simple Moving Average (SMA)
- Exponential Moving Average (EMA)

2. Momentum Indicators (weekly, monthly and yearly):
- Relative Strength Index (RSI)
- Moving Average Convergence Divergence (MACD)
- Stochastic Oscillator
- Williams %R

3. Volatility Indicators:
- Bollinger Bands
- Average True Range (ATR)

4. Volume Indicators:
- On-Balance Volume (OBV)
- Volume Rate of Change (VROC)

5. Trend Indicators:
- Parabolic SAR
- Average Directional Index (ADX)

Provide the rate and direction of change across short, mid and long terms.
Format the answer as a Markdown report.`

// TaskDescription returns the run input for company.
func TaskDescription(company string) string {
	return strings.ReplaceAll(taskTemplate, "{company}", company)
}
