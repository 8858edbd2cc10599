package strategy

import (
	"errors"
	"fmt"
	"math"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/model"
)

// RangeWindow is the number of trailing rows used for support and resistance.
const RangeWindow = 20

// Levels maps weighted totals to a bias, highest first.
var Levels = []struct {
	MinScore float64
	Bias     model.Bias
}{
	{1.0, model.BiasStrongBullish},
	{0.3, model.BiasBullish},
	{-0.3, model.BiasNeutral},
	{-1.0, model.BiasBearish},
}

// DefaultBias is the lowest level for scores < -1.0.
const DefaultBias = model.BiasStrongBearish

// mapBias maps a total score to a Bias.
func mapBias(totalScore float64) model.Bias {
	for _, l := range Levels {
		if totalScore >= l.MinScore {
			return l.Bias
		}
	}
	return DefaultBias
}

// Evaluate scores the most recent row of table.
func Evaluate(table *model.IndicatorTable) (*model.TechnicalSummary, error) {
	if table == nil {
		return nil, errors.New("no indicator table")
	}
	last, ok := table.Last()
	if !ok {
		return nil, errors.New("indicator table is empty")
	}

	resistance, support, err := calculator.PeriodRange(table.Rows, RangeWindow)
	if err != nil {
		return nil, fmt.Errorf("support/resistance: %w", err)
	}
	position, err := calculator.RangePosition(last.Close, resistance, support)
	if err != nil {
		position = math.NaN()
	}

	// Step a: directional and oscillator factors
	f1 := scoreTrend(last)
	f2 := scoreMACD(last)
	f3 := scoreRSI(last)
	f4 := scoreStochastic(last)
	f5 := scoreWilliamsR(last)

	// Step b: range position depends on the others
	otherFactorsAvg := (f1.RawScore + f2.RawScore + f3.RawScore + f4.RawScore + f5.RawScore) / 5.0
	f6 := scoreRangePosition(position, otherFactorsAvg)

	factors := []model.FactorScore{f1, f2, f3, f4, f5, f6}
	var totalScore float64
	for _, f := range factors {
		totalScore += f.Weighted
	}

	summary := &model.TechnicalSummary{
		Date:       last.Time,
		Factors:    factors,
		TotalScore: totalScore,
		Bias:       mapBias(totalScore),
		Support:    support,
		Resistance: resistance,
	}

	rsi := last.Value(model.ColRSI)
	k := last.Value(model.ColStochastic)
	switch {
	case rsi > 70 && k > 80:
		summary.WarningMsg = fmt.Sprintf("Overbought: RSI %.0f and %%K %.0f", rsi, k)
	case rsi < 30 && k < 20:
		summary.WarningMsg = fmt.Sprintf("Oversold: RSI %.0f and %%K %.0f", rsi, k)
	}
	return summary, nil
}
