package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder writes history to a local SQLite file.
type SQLiteRecorder struct {
	db  *sql.DB
	log *slog.Logger
	mu  sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *slog.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the game writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tick_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			game_id        TEXT NOT NULL,
			week           INTEGER NOT NULL,
			quarter_closed INTEGER NOT NULL,
			volatility     TEXT,
			cash           INTEGER,
			reputation     INTEGER,
			stress         INTEGER,
			portfolio_size INTEGER,
			event_count    INTEGER,
			warning_count  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tick_game ON tick_snapshots(game_id, week)`,

		`CREATE TABLE IF NOT EXISTS committee_verdicts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			game_id    TEXT NOT NULL,
			session_id TEXT NOT NULL,
			company_id TEXT,
			company    TEXT,
			outcome    TEXT,
			overall    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verdict_game ON committee_verdicts(game_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTick(snap *TickSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quarter := 0
	if snap.QuarterClosed {
		quarter = 1
	}
	_, err := r.db.Exec(`INSERT INTO tick_snapshots
		(timestamp, game_id, week, quarter_closed, volatility,
		 cash, reputation, stress, portfolio_size, event_count, warning_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.GameID, snap.Week, quarter, string(snap.Volatility),
		snap.Cash, snap.Reputation, snap.Stress,
		snap.PortfolioSize, snap.EventCount, snap.WarningCount,
	)
	return err
}

func (r *SQLiteRecorder) RecordVerdict(rec *VerdictRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO committee_verdicts
		(timestamp, game_id, session_id, company_id, company, outcome, overall)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.GameID, rec.SessionID, rec.CompanyID,
		rec.Company, string(rec.Outcome), rec.Overall,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
