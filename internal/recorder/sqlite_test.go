package recorder

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "db", "reports.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func report(symbol string, at time.Time, rsi float64) *model.Report {
	return &model.Report{
		Symbol:      symbol,
		Source:      "mock",
		GeneratedAt: at,
		Latest: map[string]float64{
			"Close":        101.5,
			model.ColRSI:   rsi,
			model.ColSMA20: 99.25,
		},
		Summary: &model.TechnicalSummary{
			Date:       at.Truncate(24 * time.Hour),
			TotalScore: 0.45,
			Bias:       model.BiasBullish,
		},
	}
}

func TestSQLiteRecorder_RecordAndRecent(t *testing.T) {
	r := newTestRecorder(t)
	base := time.Date(2024, 7, 1, 21, 0, 0, 0, time.UTC)

	first := report("AAPL", base, 55)
	require.NoError(t, r.RecordReport(first))
	assert.NotEmpty(t, first.ID)

	require.NoError(t, r.RecordReport(report("AAPL", base.Add(24*time.Hour), 61)))
	require.NoError(t, r.RecordReport(report("MSFT", base, 40)))

	recs, err := r.Recent("AAPL", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 61.0, recs[0].Latest[model.ColRSI])
	assert.Equal(t, 55.0, recs[1].Latest[model.ColRSI])
	assert.Equal(t, first.ID, recs[1].ID)
	assert.Equal(t, model.BiasBullish, recs[0].Bias)
	assert.Equal(t, "mock", recs[0].Source)
	assert.InDelta(t, 0.45, recs[0].TotalScore, 1e-9)
	assert.True(t, base.Add(24*time.Hour).Equal(recs[0].Timestamp))

	recs, err = r.Recent("AAPL", 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestSQLiteRecorder_UndefinedValuesAreNull(t *testing.T) {
	r := newTestRecorder(t)
	rep := report("TSLA", time.Now(), 50)
	rep.Latest[model.ColMACD] = math.NaN()
	delete(rep.Latest, model.ColRSI)
	rep.Summary = nil
	require.NoError(t, r.RecordReport(rep))

	var rsi, macd *float64
	require.NoError(t, r.db.QueryRow(`SELECT rsi, macd FROM reports WHERE id = ?`, rep.ID).Scan(&rsi, &macd))
	assert.Nil(t, rsi)
	assert.Nil(t, macd)

	recs, err := r.Recent("TSLA", 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Bias)
	assert.NotContains(t, recs[0].Latest, model.ColMACD)
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	r, err := NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	require.NoError(t, r.RecordReport(report("AAPL", time.Now(), 50)))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	defer r.Close()
	recs, err := r.Recent("AAPL", 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordReport(&model.Report{}))
	recs, err := r.Recent("AAPL", 5)
	assert.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, r.Close())
}
