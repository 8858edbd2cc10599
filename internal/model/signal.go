package model

import "time"

// Bias is the overall direction suggested by the latest indicators.
type Bias string

const (
	BiasStrongBullish Bias = "STRONG_BULLISH"
	BiasBullish       Bias = "BULLISH"
	BiasNeutral       Bias = "NEUTRAL"
	BiasBearish       Bias = "BEARISH"
	BiasStrongBearish Bias = "STRONG_BEARISH"
)

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// TechnicalSummary is the scored reading of the most recent indicator row.
type TechnicalSummary struct {
	Date       time.Time     `json:"date"`
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Bias       Bias          `json:"bias"`
	Support    float64       `json:"support"`
	Resistance float64       `json:"resistance"`
	WarningMsg string        `json:"warning,omitempty"`
}

// Report bundles everything produced for one symbol in one run.
type Report struct {
	ID          string             `json:"id"`
	Symbol      string             `json:"symbol"`
	Source      string             `json:"source"`
	GeneratedAt time.Time          `json:"generated_at"`
	Table       *IndicatorTable    `json:"-"`
	Latest      map[string]float64 `json:"latest"`
	Summary     *TechnicalSummary  `json:"summary"`
	Text        string             `json:"text"`
}
