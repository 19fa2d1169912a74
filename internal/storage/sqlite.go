package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS step_runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		step_index INTEGER NOT NULL,
		step_label TEXT NOT NULL,
		duration_sec REAL NOT NULL,
		elapsed_sec REAL NOT NULL,
		outcome TEXT NOT NULL,
		recorded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_step_runs_user_id ON step_runs(user_id);
	CREATE INDEX IF NOT EXISTS idx_step_runs_recorded_at ON step_runs(recorded_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteRepository) SaveRun(record *RunRecord) error {
	query := `
		INSERT INTO step_runs (id, session_id, user_id, step_index, step_label, duration_sec, elapsed_sec, outcome, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(
		query,
		record.ID,
		record.SessionID,
		record.UserID,
		record.StepIndex,
		record.StepLabel,
		record.DurationSec,
		record.ElapsedSec,
		record.Outcome,
		record.RecordedAt.UTC(),
	)

	return err
}

func (r *SQLiteRepository) GetRunsByUser(userID string) ([]RunRecord, error) {
	query := `
		SELECT id, session_id, user_id, step_index, step_label, duration_sec, elapsed_sec, outcome, recorded_at
		FROM step_runs
		WHERE user_id = ?
		ORDER BY recorded_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (r *SQLiteRepository) GetRecentRuns(userID string, since time.Time) ([]RunRecord, error) {
	query := `
		SELECT id, session_id, user_id, step_index, step_label, duration_sec, elapsed_sec, outcome, recorded_at
		FROM step_runs
		WHERE user_id = ? AND recorded_at >= ?
		ORDER BY recorded_at DESC
	`

	rows, err := r.db.Query(query, userID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (r *SQLiteRepository) GetRunStats(userID string) (*RunStats, error) {
	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN outcome = 'completed' THEN 1 ELSE 0 END), 0) as completed,
			COALESCE(SUM(elapsed_sec), 0) as total_time
		FROM step_runs
		WHERE user_id = ?
	`

	var stats RunStats
	err := r.db.QueryRow(query, userID).Scan(
		&stats.TotalRuns,
		&stats.CompletedCount,
		&stats.TotalTimeSec,
	)
	if err != nil {
		return nil, err
	}

	stats.finish()
	return &stats, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
