package strategy

import (
	"fmt"
	"math"

	"MarketAnalyst/internal/model"
)

const notAvailable = "n/a"

func undefined(name string, weight float64) model.FactorScore {
	return model.FactorScore{Name: name, RawScore: 0, Weight: weight, Weighted: 0, Commentary: notAvailable}
}

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// scoreTrend scores Close against SMA_20 and EMA_20.
// Weight: 0.25
func scoreTrend(row model.IndicatorRow) model.FactorScore {
	const name, weight = "Trend", 0.25
	sma := row.Value(model.ColSMA20)
	ema := row.Value(model.ColEMA20)
	ref := sma
	if math.IsNaN(ref) {
		ref = ema
	}
	if math.IsNaN(ref) || ref == 0 {
		return undefined(name, weight)
	}
	deviation := (row.Close - ref) / ref * 100

	above := row.Close > ema && (math.IsNaN(sma) || row.Close > sma)
	below := row.Close < ema && (math.IsNaN(sma) || row.Close < sma)

	var score float64
	var commentary string
	switch {
	case above && deviation > 5:
		score, commentary = 2.0, "extended above averages"
	case above:
		score, commentary = 1.0, "above averages"
	case below && deviation < -5:
		score, commentary = -2.0, "extended below averages"
	case below:
		score, commentary = -1.0, "below averages"
	default:
		score, commentary = 0, "between averages"
	}
	return factor(name, score, weight, fmt.Sprintf("%s, %+.1f%% vs MA", commentary, deviation))
}

// scoreMACD scores the MACD line against its signal line and zero.
// Weight: 0.25
func scoreMACD(row model.IndicatorRow) model.FactorScore {
	const name, weight = "MACD", 0.25
	macd := row.Value(model.ColMACD)
	sig := row.Value(model.ColMACDSignal)
	if math.IsNaN(macd) || math.IsNaN(sig) {
		return undefined(name, weight)
	}

	var score float64
	var commentary string
	switch {
	case macd > sig && macd > 0:
		score, commentary = 2.0, "above signal and zero"
	case macd > sig:
		score, commentary = 1.0, "above signal"
	case macd < sig && macd < 0:
		score, commentary = -2.0, "below signal and zero"
	case macd < sig:
		score, commentary = -1.0, "below signal"
	default:
		score, commentary = 0, "on signal"
	}
	return factor(name, score, weight, fmt.Sprintf("%s (%.3f/%.3f)", commentary, macd, sig))
}

// scoreRSI scores the RSI(14) zone. Overbought readings count against the bias.
// Weight: 0.20
func scoreRSI(row model.IndicatorRow) model.FactorScore {
	const name, weight = "RSI", 0.20
	rsi := row.Value(model.ColRSI)
	if math.IsNaN(rsi) {
		return undefined(name, weight)
	}

	var score float64
	switch {
	case rsi <= 20:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 0.5
	case rsi <= 60:
		score = 0
	case rsi <= 70:
		score = -0.5
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor(name, score, weight, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreStochastic scores the %K(14) zone.
// Weight: 0.10
func scoreStochastic(row model.IndicatorRow) model.FactorScore {
	const name, weight = "Stochastic", 0.10
	k := row.Value(model.ColStochastic)
	if math.IsNaN(k) {
		return undefined(name, weight)
	}

	var score float64
	switch {
	case k <= 10:
		score = 2.0
	case k <= 20:
		score = 1.0
	case k < 80:
		score = 0
	case k < 90:
		score = -1.0
	default:
		score = -2.0
	}
	return factor(name, score, weight, fmt.Sprintf("%%K=%.0f", k))
}

// scoreWilliamsR scores the Williams %R(14) zone.
// Weight: 0.10
func scoreWilliamsR(row model.IndicatorRow) model.FactorScore {
	const name, weight = "Williams %R", 0.10
	wr := row.Value(model.ColWilliamsR)
	if math.IsNaN(wr) {
		return undefined(name, weight)
	}

	var score float64
	switch {
	case wr <= -90:
		score = 2.0
	case wr <= -80:
		score = 1.0
	case wr < -20:
		score = 0
	case wr < -10:
		score = -1.0
	default:
		score = -2.0
	}
	return factor(name, score, weight, fmt.Sprintf("%%R=%.0f", wr))
}

// scoreRangePosition scores where Close sits between support and resistance.
// Weight: 0.10
// Special logic: above 95% of the range, requires otherFactorsAvg < -1 to give -2, otherwise caps at -1.
func scoreRangePosition(position float64, otherFactorsAvg float64) model.FactorScore {
	const name, weight = "Range position", 0.10
	if math.IsNaN(position) {
		return undefined(name, weight)
	}
	pos := position * 100

	var score float64
	switch {
	case pos <= 10:
		score = 1.5
	case pos <= 30:
		score = 0.5
	case pos <= 70:
		score = 0
	case pos <= 95:
		score = -0.5
	default:
		if otherFactorsAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return factor(name, score, weight, fmt.Sprintf("position=%.0f%%", pos))
}
