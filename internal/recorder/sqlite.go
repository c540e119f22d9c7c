package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists fetch events to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With(zap.String("component", "recorder"))}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			request_id     TEXT NOT NULL,
			timeframe      TEXT NOT NULL,
			status         TEXT NOT NULL,
			samples        INTEGER,
			current_price  TEXT,
			change_percent TEXT,
			error          TEXT,
			duration_ms    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_ts ON fetch_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_tf ON fetch_events(timeframe, status)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFetch(evt *FetchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	// decimals are stored as text so no precision is lost
	_, err := r.db.Exec(`INSERT INTO fetch_events
		(timestamp, request_id, timeframe, status, samples, current_price, change_percent, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		at.Unix(), evt.RequestID, evt.Timeframe, evt.Status, evt.Samples,
		evt.Current.String(), evt.ChangePercent.String(), evt.Error, evt.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert fetch event: %w", err)
	}
	return nil
}

// CountByStatus returns how many events were recorded with the given status.
func (r *SQLiteRecorder) CountByStatus(status string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM fetch_events WHERE status = ?`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fetch events: %w", err)
	}
	return n, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
