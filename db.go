package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AnalysisRun is one recorded pipeline run. Work items themselves are never
// persisted; only the run summary is.
type AnalysisRun struct {
	ID          int64
	RunAt       time.Time
	Days        int
	Output      string
	ItemCount   int
	HighCount   int
	MediumCount int
	LowCount    int
	AIUsed      bool
	AIFailure   string
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_at       DATETIME NOT NULL,
		days         INTEGER NOT NULL,
		output       TEXT NOT NULL,
		item_count   INTEGER NOT NULL,
		high_count   INTEGER NOT NULL DEFAULT 0,
		medium_count INTEGER NOT NULL DEFAULT 0,
		low_count    INTEGER NOT NULL DEFAULT 0,
		ai_used      INTEGER NOT NULL DEFAULT 0,
		ai_failure   TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_runs_run_at ON analysis_runs(run_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

func RecordRun(db *sql.DB, run AnalysisRun) error {
	_, err := db.Exec(
		`INSERT INTO analysis_runs (run_at, days, output, item_count, high_count, medium_count, low_count, ai_used, ai_failure)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunAt, run.Days, run.Output, run.ItemCount,
		run.HighCount, run.MediumCount, run.LowCount, run.AIUsed, run.AIFailure,
	)
	return err
}

func RecentRuns(db *sql.DB, limit int) ([]AnalysisRun, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := db.Query(
		`SELECT id, run_at, days, output, item_count, high_count, medium_count, low_count, ai_used, ai_failure
		 FROM analysis_runs ORDER BY run_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		if err := rows.Scan(
			&run.ID, &run.RunAt, &run.Days, &run.Output, &run.ItemCount,
			&run.HighCount, &run.MediumCount, &run.LowCount, &run.AIUsed, &run.AIFailure,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
