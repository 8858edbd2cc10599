package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/collector"
	"MarketAnalyst/internal/recorder"
)

// MaxBodyBytes caps the CSV accepted by POST /v1/indicators.
const MaxBodyBytes = 10 << 20

// Server serves the indicator API.
type Server struct {
	Calc      *calculator.Calculator
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Metrics   *Metrics
	Logger    *zap.Logger
	StartedAt time.Time
}

// New creates a Server. rec may be nil.
func New(calc *calculator.Calculator, col *collector.Collector, rec recorder.Recorder, m *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Server{
		Calc:      calc,
		Collector: col,
		Recorder:  rec,
		Metrics:   m,
		Logger:    logger,
		StartedAt: time.Now(),
	}
}

// Routes returns the HTTP handler with every endpoint registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/indicators", s.Metrics.instrument("/v1/indicators", s.handleIndicators))
	mux.HandleFunc("GET /v1/report/{symbol}", s.Metrics.instrument("/v1/report", s.handleReport))
	mux.HandleFunc("GET /v1/history/{symbol}", s.Metrics.instrument("/v1/history", s.handleHistory))
	mux.HandleFunc("GET /healthz", s.Metrics.instrument("/healthz", s.handleHealth))
	mux.Handle("GET /metrics", s.Metrics.Handler())
	return mux
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// calculatorFor applies per-request overrides (?tail=N&extended=true).
func (s *Server) calculatorFor(r *http.Request) (*calculator.Calculator, error) {
	q := r.URL.Query()
	if q.Get("tail") == "" && q.Get("extended") == "" {
		return s.Calc, nil
	}
	opts := calculator.Options{TailRows: s.Calc.TailRows()}
	if v := q.Get("tail"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("tail must be a positive integer")
		}
		opts.TailRows = n
	}
	if v := q.Get("extended"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("extended must be a boolean")
		}
		opts.Extended = b
	}
	return calculator.New(opts), nil
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	calc, err := s.calculatorFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	start := time.Now()
	table, err := calc.Calculate(bytes.NewReader(body))
	s.Metrics.CalcDur.Observe(time.Since(start).Seconds())
	if err != nil {
		s.Metrics.CalcErrorsTotal.Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.Metrics.CalcRows.Set(float64(len(table.Rows)))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, calc.Render(table))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.Collector == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no data source configured"))
		return
	}
	symbol := strings.ToUpper(r.PathValue("symbol"))
	report, err := s.Collector.Collect(r.Context(), symbol)
	if err != nil {
		s.Logger.Warn("report failed", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	s.Metrics.ReportsTotal.WithLabelValues(report.Source).Inc()
	s.Metrics.CalcRows.Set(float64(len(report.Table.Rows)))
	if err := s.Recorder.RecordReport(report); err != nil {
		s.Logger.Error("record report failed", zap.String("symbol", symbol), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	recs, err := s.Recorder.Recent(symbol, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if recs == nil {
		recs = []recorder.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"uptime":     time.Since(s.StartedAt).Round(time.Second).String(),
		"started_at": s.StartedAt.Format(time.RFC3339),
	})
}
