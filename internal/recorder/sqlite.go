package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PhysioAlign/internal/model"
)

// SQLiteRecorder persists pipeline run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analysis tools can read run history while a run is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			subjects    INTEGER,
			ok          INTEGER,
			skipped     INTEGER,
			failed      INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS file_outcomes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			subject   TEXT,
			stage     TEXT,
			path      TEXT,
			status    TEXT,
			rows      INTEGER,
			reason    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON file_outcomes(run_id)`,

		`CREATE TABLE IF NOT EXISTS merges (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			subject     TEXT,
			join_mode   TEXT,
			scalar_rows INTEGER,
			wave_rows   INTEGER,
			merged_rows INTEGER,
			output_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_merges_run ON merges(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(id, started_at, finished_at, subjects, ok, skipped, failed)
		VALUES (?,?,?,?,?,?,?)`,
		run.RunID, run.StartedAt, run.FinishedAt,
		run.Subjects, run.OK, run.Skipped, run.Failed,
	)
	return err
}

func (r *SQLiteRecorder) RecordOutcome(runID string, o model.FileOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO file_outcomes
		(run_id, timestamp, subject, stage, path, status, rows, reason)
		VALUES (?,?,?,?,?,?,?,?)`,
		runID, time.Now().Unix(), o.Subject, o.Stage, o.Path,
		string(o.Status), o.Rows, o.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordMerge(m *MergeSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO merges
		(run_id, timestamp, subject, join_mode, scalar_rows, wave_rows, merged_rows, output_path)
		VALUES (?,?,?,?,?,?,?,?)`,
		m.RunID, time.Now().Unix(), m.Subject, m.JoinMode,
		m.ScalarRows, m.WaveRows, m.MergedRows, m.OutputPath,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
