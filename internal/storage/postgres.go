package storage

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(connStr string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	repo := &PostgresRepository{db: db}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *PostgresRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS step_runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		step_index INTEGER NOT NULL,
		step_label TEXT NOT NULL,
		duration_sec DOUBLE PRECISION NOT NULL,
		elapsed_sec DOUBLE PRECISION NOT NULL,
		outcome TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_step_runs_user_id ON step_runs(user_id);
	CREATE INDEX IF NOT EXISTS idx_step_runs_recorded_at ON step_runs(recorded_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

func (r *PostgresRepository) SaveRun(record *RunRecord) error {
	query := `
		INSERT INTO step_runs (id, session_id, user_id, step_index, step_label, duration_sec, elapsed_sec, outcome, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
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
		record.RecordedAt,
	)

	return err
}

func (r *PostgresRepository) GetRunsByUser(userID string) ([]RunRecord, error) {
	query := `
		SELECT id, session_id, user_id, step_index, step_label, duration_sec, elapsed_sec, outcome, recorded_at
		FROM step_runs
		WHERE user_id = $1
		ORDER BY recorded_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (r *PostgresRepository) GetRecentRuns(userID string, since time.Time) ([]RunRecord, error) {
	query := `
		SELECT id, session_id, user_id, step_index, step_label, duration_sec, elapsed_sec, outcome, recorded_at
		FROM step_runs
		WHERE user_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at DESC
	`

	rows, err := r.db.Query(query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (r *PostgresRepository) GetRunStats(userID string) (*RunStats, error) {
	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN outcome = 'completed' THEN 1 ELSE 0 END), 0) as completed,
			COALESCE(SUM(elapsed_sec), 0) as total_time
		FROM step_runs
		WHERE user_id = $1
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

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
