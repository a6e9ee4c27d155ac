package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"LevelSentinel/internal/model"
)

// SQLiteRecorder persists the alert, pause and cycle journal to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the bot writes.
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
		`CREATE TABLE IF NOT EXISTS alerts (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			pair       TEXT NOT NULL,
			timeframe  TEXT NOT NULL,
			kind       TEXT NOT NULL,
			price      REAL,
			level      REAL,
			distance   REAL,
			support    REAL,
			resistance REAL,
			source     TEXT,
			bias       TEXT,
			bias_score REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_pair ON alerts(pair, timeframe)`,

		`CREATE TABLE IF NOT EXISTS pauses (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			pair         TEXT NOT NULL,
			failures     INTEGER,
			paused_until INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pauses_ts ON pauses(timestamp)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			duration_ms INTEGER,
			scanned     INTEGER,
			skipped     INTEGER,
			failed      INTEGER,
			alerts      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAlert(evt *model.TouchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alerts
		(id, timestamp, pair, timeframe, kind, price, level, distance, support, resistance, source, bias, bias_score)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.ID, unixOrNow(evt.At), evt.Pair, evt.Timeframe, string(evt.Kind),
		evt.Price, evt.Level, evt.Distance, evt.Levels.Support, evt.Levels.Resistance, evt.Source,
		evt.Bias.Label, evt.Bias.TotalScore,
	)
	return err
}

func (r *SQLiteRecorder) RecordPause(evt *model.PauseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO pauses
		(timestamp, pair, failures, paused_until)
		VALUES (?,?,?,?)`,
		unixOrNow(evt.At), evt.Pair, evt.Failures, evt.Until.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycles
		(timestamp, duration_ms, scanned, skipped, failed, alerts)
		VALUES (?,?,?,?,?,?)`,
		unixOrNow(rec.StartedAt), rec.Duration.Milliseconds(),
		rec.Scanned, rec.Skipped, rec.Failed, rec.Alerts,
	)
	return err
}

// CountAlertsSince returns how many alerts were journaled at or after since.
func (r *SQLiteRecorder) CountAlertsSince(since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM alerts WHERE timestamp >= ?`, since.Unix()).Scan(&n)
	return n, err
}

// DB exposes the handle for health probes.
func (r *SQLiteRecorder) DB() *sql.DB { return r.db }

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}

func unixOrNow(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().Unix()
	}
	return t.Unix()
}
