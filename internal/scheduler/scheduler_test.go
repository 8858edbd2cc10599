package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/collector"
	"MarketAnalyst/internal/recorder"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher) (*Scheduler, *fakeSender, recorder.Recorder) {
	t.Helper()
	col := collector.NewCollector(fetcher, calculator.New(calculator.Options{}), 60, "1d", nil)
	col.Now = func() time.Time { return time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC) }
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), col, sender, rec, []string{"AAPL", "MSFT"}, nil)
	return s, sender, rec
}

func TestRunNow_SendsAndRecordsEverySymbol(t *testing.T) {
	s, sender, rec := newTestScheduler(t, &collector.MockFetcher{Price: 100})
	require.NoError(t, s.RegisterAll("0 30 16 * * 1-5"))

	s.RunNow()

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0], "AAPL technical report")
	assert.Contains(t, sender.sent[1], "MSFT technical report")
	for _, sym := range []string{"AAPL", "MSFT"} {
		recs, err := rec.Recent(sym, 5)
		require.NoError(t, err)
		assert.Len(t, recs, 1, sym)
	}
}

func TestRunNow_ReportsFailures(t *testing.T) {
	s, sender, _ := newTestScheduler(t, &collector.MockFetcher{Err: errors.New("rate limited")})
	s.RunNow()
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0], "AAPL report failed")
	assert.Contains(t, sender.sent[0], "rate limited")
}

func TestFailureRepliesAreHTMLEscaped(t *testing.T) {
	upstream := errors.New(`yahoo: status 503, body: <html><body>Service <b>Unavailable</b> & down</body></html>`)
	s, sender, _ := newTestScheduler(t, &collector.MockFetcher{Err: upstream})

	s.RunNow()
	require.Len(t, sender.sent, 2)
	for _, msg := range append(sender.sent, s.HandleCommand(context.Background(), "/report <AAPL>")) {
		assert.NotContains(t, msg, "<html>")
		assert.NotContains(t, msg, "<b>Unavailable")
		assert.Contains(t, msg, "&lt;html&gt;")
		assert.Contains(t, msg, "&amp; down")
	}
	assert.Contains(t, s.HandleCommand(context.Background(), "/report <AAPL>"), "&lt;AAPL&gt; report failed")
}

func TestRegisterAll_InvalidCron(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{})
	assert.Error(t, s.RegisterAll("not a cron"))
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{Price: 250})
	require.NoError(t, s.RegisterAll("0 0 22 * * 1-5"))
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/report tsla")
	assert.Contains(t, reply, "TSLA technical report")
	assert.Contains(t, reply, "<pre>Calculated Indicators:")

	reply = s.HandleCommand(ctx, "/history@AnalystBot TSLA")
	assert.Contains(t, reply, "TSLA recent reports")
	assert.Contains(t, reply, "RSI:")

	assert.Contains(t, s.HandleCommand(ctx, "/history NVDA"), "No stored reports for NVDA")
	assert.Contains(t, s.HandleCommand(ctx, "/watchlist"), "• MSFT")
	assert.Equal(t, "Usage: /report SYMBOL", s.HandleCommand(ctx, "/report"))
	assert.True(t, strings.HasPrefix(s.HandleCommand(ctx, "hello"), "Available commands"))
	assert.True(t, strings.HasPrefix(s.HandleCommand(ctx, ""), "Available commands"))
}
