package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/entity"
)

// PoolConfig carries the connection pool knobs read from the environment.
type PoolConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          UUID PRIMARY KEY,
	status      TEXT NOT NULL,
	total_files INTEGER NOT NULL,
	processed   INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS job_results (
	job_id      UUID NOT NULL REFERENCES jobs(id),
	position    INTEGER NOT NULL,
	file_name   TEXT NOT NULL,
	status      TEXT NOT NULL,
	result_json JSONB
);
CREATE TABLE IF NOT EXISTS job_errors (
	job_id    UUID NOT NULL REFERENCES jobs(id),
	position  INTEGER NOT NULL,
	file_name TEXT NOT NULL,
	error     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	id          UUID PRIMARY KEY,
	file_name   TEXT NOT NULL,
	result_json JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
`

// PostgresStore persists jobs and records in PostgreSQL via a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool and runs the migrations.
func OpenPostgres(ctx context.Context, cfg PoolConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "docsift"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx, cancel := withDialTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// withDialTimeout bounds ctx by timeout. A zero or negative timeout means no
// bound, not an already-expired context.
func withDialTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// HealthCheck pings the pool to catch DSN issues early.
func (s *PostgresStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) CreateJob(ctx context.Context, totalFiles int) (*entity.BatchJob, error) {
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
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, status, total_files, processed, created_at, updated_at) VALUES ($1, $2, $3, 0, $4, $5)`,
		job.ID, string(job.Status), totalFiles, now, now)
	if err != nil {
		s.logger.Error("jobstore.create failed", "error", err)
		return nil, common.WrapError(err, "create job")
	}
	return job, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID uuid.UUID) (*entity.BatchJob, error) {
	job := &entity.BatchJob{ID: jobID}
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT status, total_files, processed, created_at, updated_at FROM jobs WHERE id = $1`, jobID).
		Scan(&status, &job.TotalFiles, &job.Processed, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get job")
	}
	job.Status = constants.JobStatus(status)
	if job.TotalFiles > 0 {
		job.Progress = float64(job.Processed) / float64(job.TotalFiles) * 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT file_name, status, result_json FROM job_results WHERE job_id = $1 ORDER BY position`, jobID)
	if err != nil {
		return nil, common.WrapError(err, "get job results")
	}
	defer rows.Close()
	job.Results = []entity.FileResult{}
	for rows.Next() {
		var fr entity.FileResult
		var resultJSON []byte
		if err := rows.Scan(&fr.FileName, &fr.Status, &resultJSON); err != nil {
			return nil, common.WrapError(err, "scan job result")
		}
		if len(resultJSON) > 0 {
			var pr entity.ProcessingResult
			if err := json.Unmarshal(resultJSON, &pr); err == nil {
				fr.Result = &pr
			}
		}
		job.Results = append(job.Results, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "iterate job results")
	}

	errRows, err := s.pool.Query(ctx,
		`SELECT file_name, error FROM job_errors WHERE job_id = $1 ORDER BY position`, jobID)
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

func (s *PostgresStore) AppendResult(ctx context.Context, jobID uuid.UUID, res entity.FileResult) error {
	var resultJSON []byte
	if res.Result != nil {
		b, err := json.Marshal(res.Result)
		if err != nil {
			return common.WrapError(err, "marshal result")
		}
		resultJSON = b
	}
	return s.appendTx(ctx, jobID, func(tx pgx.Tx, position int) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO job_results (job_id, position, file_name, status, result_json) VALUES ($1, $2, $3, $4, $5)`,
			jobID, position, res.FileName, res.Status, resultJSON)
		return err
	})
}

func (s *PostgresStore) AppendError(ctx context.Context, jobID uuid.UUID, fe entity.FileError) error {
	return s.appendTx(ctx, jobID, func(tx pgx.Tx, position int) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO job_errors (job_id, position, file_name, error) VALUES ($1, $2, $3, $4)`,
			jobID, position, fe.FileName, fe.Error)
		return err
	})
}

func (s *PostgresStore) appendTx(ctx context.Context, jobID uuid.UUID, insert func(tx pgx.Tx, position int) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return common.WrapError(err, "begin append")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var processed int
	err = tx.QueryRow(ctx, `SELECT processed FROM jobs WHERE id = $1 FOR UPDATE`, jobID).Scan(&processed)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return common.WrapError(err, "read job")
	}

	if err := insert(tx, processed); err != nil {
		return common.WrapError(err, "insert row")
	}
	if _, err := tx.Exec(ctx,
		`UPDATE jobs SET processed = processed + 1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), jobID); err != nil {
		return common.WrapError(err, "bump progress")
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, jobID uuid.UUID) error {
	return s.setStatus(ctx, jobID, constants.JobStatusCompleted)
}

func (s *PostgresStore) MarkFailed(ctx context.Context, jobID uuid.UUID) error {
	return s.setStatus(ctx, jobID, constants.JobStatusFailed)
}

func (s *PostgresStore) setStatus(ctx context.Context, jobID uuid.UUID, status constants.JobStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), jobID)
	if err != nil {
		return common.WrapError(err, "set status")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveRecord(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec.Result)
	if err != nil {
		return common.WrapError(err, "marshal record")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO records (id, file_name, result_json, created_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.FileName, b, rec.CreatedAt)
	if err != nil {
		return common.WrapError(err, "save record")
	}
	return nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, from, to *time.Time) ([]Record, error) {
	query := `SELECT id, file_name, result_json, created_at FROM records WHERE 1=1`
	var args []any
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}
	query += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list records")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var resultJSON []byte
		if err := rows.Scan(&rec.ID, &rec.FileName, &resultJSON, &rec.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan record")
		}
		if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
			return nil, common.WrapError(err, "decode record")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.logger.Info("closing database connections")
	s.pool.Close()
	return nil
}
