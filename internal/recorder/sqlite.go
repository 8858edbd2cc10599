package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MarketAnalyst/internal/model"
)

// SQLiteRecorder persists reports to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			source        TEXT,
			bar_date      INTEGER,
			close         REAL,
			sma_20        REAL,
			ema_20        REAL,
			rsi           REAL,
			macd          REAL,
			macd_signal   REAL,
			stochastic    REAL,
			williams_r    REAL,
			latest_json   TEXT,
			total_score   REAL,
			bias          TEXT,
			warning       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_symbol_ts ON reports(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps undefined indicator values to SQL NULL.
func nullable(latest map[string]float64, key string) sql.NullFloat64 {
	v, ok := latest[key]
	if !ok || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func (r *SQLiteRecorder) RecordReport(rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	ts := rep.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	defined := make(map[string]float64, len(rep.Latest))
	for k, v := range rep.Latest {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			defined[k] = v
		}
	}
	latestJSON, err := json.Marshal(defined)
	if err != nil {
		return fmt.Errorf("encode latest values: %w", err)
	}

	var barDate sql.NullInt64
	var totalScore sql.NullFloat64
	var bias, warning string
	if s := rep.Summary; s != nil {
		barDate = sql.NullInt64{Int64: s.Date.Unix(), Valid: true}
		totalScore = sql.NullFloat64{Float64: s.TotalScore, Valid: true}
		bias = string(s.Bias)
		warning = s.WarningMsg
	}

	l := defined
	_, err = r.db.Exec(`INSERT INTO reports
		(id, timestamp, symbol, source, bar_date, close,
		 sma_20, ema_20, rsi, macd, macd_signal, stochastic, williams_r,
		 latest_json, total_score, bias, warning)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rep.ID, ts.Unix(), rep.Symbol, rep.Source, barDate, nullable(l, "Close"),
		nullable(l, model.ColSMA20), nullable(l, model.ColEMA20), nullable(l, model.ColRSI),
		nullable(l, model.ColMACD), nullable(l, model.ColMACDSignal),
		nullable(l, model.ColStochastic), nullable(l, model.ColWilliamsR),
		string(latestJSON), totalScore, bias, warning,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Recent returns the newest reports for symbol, newest first.
func (r *SQLiteRecorder) Recent(symbol string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, timestamp, symbol, source, bar_date, latest_json, total_score, bias, warning
		FROM reports WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec        Record
			ts         int64
			barDate    sql.NullInt64
			latestJSON sql.NullString
			totalScore sql.NullFloat64
			bias       sql.NullString
			warning    sql.NullString
			source     sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Symbol, &source, &barDate, &latestJSON, &totalScore, &bias, &warning); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0).UTC()
		if barDate.Valid {
			rec.BarDate = time.Unix(barDate.Int64, 0).UTC()
		}
		if latestJSON.Valid && latestJSON.String != "" {
			if err := json.Unmarshal([]byte(latestJSON.String), &rec.Latest); err != nil {
				return nil, fmt.Errorf("decode latest values: %w", err)
			}
		}
		rec.Source = source.String
		rec.TotalScore = totalScore.Float64
		rec.Bias = model.Bias(bias.String)
		rec.Warning = warning.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
