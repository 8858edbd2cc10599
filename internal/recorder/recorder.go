package recorder

import (
	"time"

	"MarketAnalyst/internal/model"
)

// Record is one persisted report row.
type Record struct {
	ID         string             `json:"id"`
	Symbol     string             `json:"symbol"`
	Source     string             `json:"source"`
	Timestamp  time.Time          `json:"timestamp"`
	BarDate    time.Time          `json:"bar_date"`
	Latest     map[string]float64 `json:"latest"`
	TotalScore float64            `json:"total_score"`
	Bias       model.Bias         `json:"bias"`
	Warning    string             `json:"warning,omitempty"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordReport(r *model.Report) error
	Recent(symbol string, limit int) ([]Record, error)
	Close() error
}
