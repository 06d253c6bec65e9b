package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// SqlJournal implements Journal with SQLite.
type SqlJournal struct {
	db *sql.DB
}

// Open opens or creates a SQLite journal at path and runs migrations.
// Creates the parent directory (e.g. .qrelay) if it does not exist.
func Open(path string) (*SqlJournal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	j := &SqlJournal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *SqlJournal) migrate() error {
	var tableCount int
	err := j.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		if _, err := j.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := j.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = j.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := j.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != currentSchemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the database connection.
func (j *SqlJournal) Close() error {
	return j.db.Close()
}

// RecordBatch inserts the batch, or updates its closing fields when the id
// is already present. Callers record a batch once at start and once more
// when it finishes.
func (j *SqlJournal) RecordBatch(b *Batch) error {
	if b == nil || b.ID == "" {
		return errors.New("batch has no id")
	}
	if b.StartedAt == "" {
		b.StartedAt = NowUTC()
	}
	_, err := j.db.Exec(
		`INSERT INTO batches(id, run_id, started_at, finished_at, total, failed)
		 VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   finished_at = excluded.finished_at,
		   total       = excluded.total,
		   failed      = excluded.failed`,
		b.ID, b.RunID, b.StartedAt, b.FinishedAt, b.Total, b.Failed,
	)
	if err != nil {
		return fmt.Errorf("record batch: %w", err)
	}
	return nil
}

// RecordResult inserts one result row and fills in its assigned id.
func (j *SqlJournal) RecordResult(r *Result) error {
	if r == nil {
		return errors.New("result is nil")
	}
	if r.ReportedAt == "" {
		r.ReportedAt = NowUTC()
	}
	res, err := j.db.Exec(
		`INSERT INTO results(batch_id, run_id, case_id, status, log_id, error, exe_time, reported_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BatchID, r.RunID, r.CaseID, r.Status, r.LogID, r.Err, r.ExeTime, r.ReportedAt,
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// Summary aggregates the journal entries recorded for a run.
func (j *SqlJournal) Summary(runID int64) (*Summary, error) {
	rows, err := j.db.Query(
		"SELECT status, error, exe_time FROM results WHERE run_id = ? ORDER BY id", runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var errMsg sql.NullString
		if err := rows.Scan(&r.Status, &errMsg, &r.ExeTime); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Err = nullStr(errMsg)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return Summarize(runID, results), nil
}
