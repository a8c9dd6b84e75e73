package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	total_files INTEGER NOT NULL,
	processed   INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS job_results (
	job_id      TEXT NOT NULL REFERENCES jobs(id),
	position    INTEGER NOT NULL,
	file_name   TEXT NOT NULL,
	status      TEXT NOT NULL,
	result_json TEXT
);
CREATE TABLE IF NOT EXISTS job_errors (
	job_id    TEXT NOT NULL REFERENCES jobs(id),
	position  INTEGER NOT NULL,
	file_name TEXT NOT NULL,
	error     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	file_name   TEXT NOT NULL,
	result_json TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
`

// SQLiteStore persists jobs and records in an embedded SQLite database.
// Use ":memory:" as path for a throwaway store.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (and migrates) the SQLite store at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows one writer; keep the pool at a single connection so
	// concurrent appends serialize instead of failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	logger.Info("sqlite store opened", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) CreateJob(ctx context.Context, totalFiles int) (*entity.BatchJob, error) {
	now := time.Now().UTC()
	job := &entity.BatchJob{
		ID:         uuid.New(),
		Status:     constants.JobStatusProcessing,
		TotalFiles: totalFiles,
		Results:    []entity.FileResult{},
		Errors:     []entity.FileError{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, total_files, processed, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		job.ID.String(), string(job.Status), totalFiles, now, now)
	if err != nil {
		s.logger.Error("jobstore.create failed", "error", err)
		return nil, common.WrapError(err, "create job")
	}
	return job, nil
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID uuid.UUID) (*entity.BatchJob, error) {
	job := &entity.BatchJob{ID: jobID}
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status, total_files, processed, created_at, updated_at FROM jobs WHERE id = ?`,
		jobID.String()).
		Scan(&status, &job.TotalFiles, &job.Processed, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get job")
	}
	job.Status = constants.JobStatus(status)
	if job.TotalFiles > 0 {
		job.Progress = float64(job.Processed) / float64(job.TotalFiles) * 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT file_name, status, result_json FROM job_results WHERE job_id = ? ORDER BY position`,
		jobID.String())
	if err != nil {
		return nil, common.WrapError(err, "get job results")
	}
	defer rows.Close()
	job.Results = []entity.FileResult{}
	for rows.Next() {
		var fr entity.FileResult
		var resultJSON sql.NullString
		if err := rows.Scan(&fr.FileName, &fr.Status, &resultJSON); err != nil {
			return nil, common.WrapError(err, "scan job result")
		}
		if resultJSON.Valid && resultJSON.String != "" {
			var pr entity.ProcessingResult
			if err := json.Unmarshal([]byte(resultJSON.String), &pr); err == nil {
				fr.Result = &pr
			}
		}
		job.Results = append(job.Results, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "iterate job results")
	}

	errRows, err := s.db.QueryContext(ctx,
		`SELECT file_name, error FROM job_errors WHERE job_id = ? ORDER BY position`,
		jobID.String())
	if err != nil {
		return nil, common.WrapError(err, "get job errors")
	}
	defer errRows.Close()
	job.Errors = []entity.FileError{}
	for errRows.Next() {
		var fe entity.FileError
		if err := errRows.Scan(&fe.FileName, &fe.Error); err != nil {
			return nil, common.WrapError(err, "scan job error")
		}
		job.Errors = append(job.Errors, fe)
	}
	return job, errRows.Err()
}

func (s *SQLiteStore) AppendResult(ctx context.Context, jobID uuid.UUID, res entity.FileResult) error {
	var resultJSON any
	if res.Result != nil {
		b, err := json.Marshal(res.Result)
		if err != nil {
			return common.WrapError(err, "marshal result")
		}
		resultJSON = string(b)
	}
	return s.appendTx(ctx, jobID, func(tx *sql.Tx, position int) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO job_results (job_id, position, file_name, status, result_json) VALUES (?, ?, ?, ?, ?)`,
			jobID.String(), position, res.FileName, res.Status, resultJSON)
		return err
	})
}

func (s *SQLiteStore) AppendError(ctx context.Context, jobID uuid.UUID, fe entity.FileError) error {
	return s.appendTx(ctx, jobID, func(tx *sql.Tx, position int) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO job_errors (job_id, position, file_name, error) VALUES (?, ?, ?, ?)`,
			jobID.String(), position, fe.FileName, fe.Error)
		return err
	})
}

// appendTx bumps the processed counter and inserts the row in one
// transaction, so progress and results stay consistent under concurrency.
func (s *SQLiteStore) appendTx(ctx context.Context, jobID uuid.UUID, insert func(tx *sql.Tx, position int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin append")
	}
	defer func() { _ = tx.Rollback() }()

	var processed int
	err = tx.QueryRowContext(ctx, `SELECT processed FROM jobs WHERE id = ?`, jobID.String()).Scan(&processed)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return common.WrapError(err, "read job")
	}

	if err := insert(tx, processed); err != nil {
		return common.WrapError(err, "insert row")
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE jobs SET processed = processed + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), jobID.String()); err != nil {
		return common.WrapError(err, "bump progress")
	}
	return tx.Commit()
}

func (s *SQLiteStore) MarkCompleted(ctx context.Context, jobID uuid.UUID) error {
	return s.setStatus(ctx, jobID, constants.JobStatusCompleted)
}

func (s *SQLiteStore) MarkFailed(ctx context.Context, jobID uuid.UUID) error {
	return s.setStatus(ctx, jobID, constants.JobStatusFailed)
}

func (s *SQLiteStore) setStatus(ctx context.Context, jobID uuid.UUID, status constants.JobStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), jobID.String())
	if err != nil {
		return common.WrapError(err, "set status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec.Result)
	if err != nil {
		return common.WrapError(err, "marshal record")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, file_name, result_json, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID.String(), rec.FileName, string(b), rec.CreatedAt)
	if err != nil {
		return common.WrapError(err, "save record")
	}
	return nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, from, to *time.Time) ([]Record, error) {
	query := `SELECT id, file_name, result_json, created_at FROM records WHERE 1=1`
	var args []any
	if from != nil {
		query += ` AND created_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND created_at <= ?`
		args = append(args, *to)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list records")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var id, resultJSON string
		if err := rows.Scan(&id, &rec.FileName, &resultJSON, &rec.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan record")
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, common.WrapError(err, "parse record id")
		}
		if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
			return nil, common.WrapError(err, "decode record")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
