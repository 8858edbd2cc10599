package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"MarketAnalyst/internal/collector"
	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/notifier"
	"MarketAnalyst/internal/recorder"
)

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// SendRetries is the retry budget for every scheduled notification.
const SendRetries = 3

// Scheduler manages cron tasks and chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Notifier   Sender
	Recorder   recorder.Recorder
	Watchlist  []string
	ReportCron string
	Logger     *zap.Logger
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, rec recorder.Recorder, watchlist []string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  sender,
		Recorder:  rec,
		Watchlist: watchlist,
		Logger:    logger,
		Ctx:       ctx,
	}
}

// RegisterAll registers the watchlist report task.
func (s *Scheduler) RegisterAll(reportCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	s.ReportCron = reportCron
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Strings("watchlist", s.Watchlist), zap.String("cron", s.ReportCron))
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the report task immediately (for manual trigger / run on start).
func (s *Scheduler) RunNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	s.Logger.Info("running report task", zap.Int("symbols", len(s.Watchlist)))
	for _, symbol := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		if _, err := s.reportSymbol(symbol); err != nil {
			s.Logger.Error("report failed", zap.String("symbol", symbol), zap.Error(err))
			s.trySend(failure(symbol, "report", err))
		}
	}
}

// reportSymbol collects, delivers and records one report.
func (s *Scheduler) reportSymbol(symbol string) (*model.Report, error) {
	report, err := s.Collector.Collect(s.Ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.trySend(notifier.FormatReport(report))
	if err := s.Recorder.RecordReport(report); err != nil {
		s.Logger.Error("record report failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return report, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// "/report@MyBot AAPL" is how Telegram addresses commands in groups.
	name := strings.SplitN(strings.ToLower(fields[0]), "@", 2)[0]
	args := fields[1:]

	switch name {
	case "/report":
		if len(args) == 0 {
			return "Usage: /report SYMBOL"
		}
		symbol := strings.ToUpper(args[0])
		report, err := s.Collector.Collect(ctx, symbol)
		if err != nil {
			s.Logger.Error("command report failed", zap.String("symbol", symbol), zap.Error(err))
			return failure(symbol, "report", err)
		}
		if err := s.Recorder.RecordReport(report); err != nil {
			s.Logger.Error("record report failed", zap.String("symbol", symbol), zap.Error(err))
		}
		return notifier.FormatReport(report)
	case "/watchlist":
		return notifier.FormatWatchlist(s.Watchlist, s.ReportCron)
	case "/history":
		if len(args) == 0 {
			return "Usage: /history SYMBOL"
		}
		return s.history(strings.ToUpper(args[0]))
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /report SYMBOL\n• /history SYMBOL\n• /watchlist"

func (s *Scheduler) history(symbol string) string {
	recs, err := s.Recorder.Recent(symbol, 5)
	if err != nil {
		return failure(symbol, "history", err)
	}
	if len(recs) == 0 {
		return fmt.Sprintf("No stored reports for %s", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s recent reports</b>\n", html.EscapeString(symbol)))
	for _, r := range recs {
		b.WriteString(fmt.Sprintf("\n<b>%s</b> %s (%+.3f)\n",
			r.Timestamp.Format("2006-01-02 15:04"), notifier.BiasLabel(r.Bias), r.TotalScore))
		b.WriteString(notifier.FormatLatest(r.Latest))
	}
	return b.String()
}

// failure formats an HTML-safe error reply.
func failure(symbol, what string, err error) string {
	return fmt.Sprintf("❌ %s %s failed: %s", html.EscapeString(symbol), what, html.EscapeString(err.Error()))
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, SendRetries); err != nil {
		s.Logger.Error("send notification failed", zap.Error(err))
	}
}
