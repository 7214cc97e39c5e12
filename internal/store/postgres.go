package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// DBPool abstracts pgxpool.Pool so the store can be mocked in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createJobsTableSQL = `
CREATE TABLE IF NOT EXISTS analysis_jobs (
    job_id       TEXT PRIMARY KEY,
    status       TEXT NOT NULL,
    source       TEXT NOT NULL,
    filename     TEXT NOT NULL DEFAULT '',
    metadata     JSONB NOT NULL DEFAULT '{}',
    text_length  INTEGER NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL,
    started_at   TIMESTAMPTZ,
    completed_at TIMESTAMPTZ,
    result       JSONB,
    error        TEXT NOT NULL DEFAULT ''
);`

const jobColumns = `job_id, status, source, filename, metadata, text_length, created_at, started_at, completed_at, result, error`

// Postgres is the durable job store.
type Postgres struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgres verifies the connection and ensures the jobs table exists.
func NewPostgres(ctx context.Context, pool DBPool, logger *zap.Logger) (*Postgres, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createJobsTableSQL); err != nil {
		return nil, fmt.Errorf("failed to ensure jobs table: %w", err)
	}
	return &Postgres{pool: pool, log: logger.Named("store.postgres")}, nil
}

// Create implements schemas.JobStore.
func (p *Postgres) Create(ctx context.Context, job *schemas.Job) (*schemas.Job, error) {
	if job.JobID == "" {
		return nil, fmt.Errorf("job id must not be empty")
	}

	stored := job.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.Status == "" {
		stored.Status = schemas.JobPending
	}

	metadata, result, err := encodeJSONFields(stored)
	if err != nil {
		return nil, err
	}

	_, err = p.pool.Exec(ctx, `
        INSERT INTO analysis_jobs (`+jobColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		stored.JobID, string(stored.Status), string(stored.Source), stored.Filename,
		metadata, stored.TextLength, stored.CreatedAt.UTC(),
		stored.StartedAt, stored.CompletedAt, result, stored.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}
	return stored, nil
}

// Get implements schemas.JobStore.
func (p *Postgres) Get(ctx context.Context, id string) (*schemas.Job, error) {
	row := p.pool.QueryRow(ctx, `
        SELECT `+jobColumns+` FROM analysis_jobs WHERE job_id = $1;`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return job, nil
}

// Update implements schemas.JobStore. The row is locked, merged in memory
// through the shared applyUpdate and written back, so both drivers keep
// identical merge semantics.
func (p *Postgres) Update(ctx context.Context, id string, upd schemas.JobUpdate) (*schemas.Job, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			p.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	row := tx.QueryRow(ctx, `
        SELECT `+jobColumns+` FROM analysis_jobs WHERE job_id = $1 FOR UPDATE;`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job for update: %w", err)
	}

	applyUpdate(job, upd)

	metadata, result, err := encodeJSONFields(job)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
        UPDATE analysis_jobs
        SET status = $2, metadata = $3, text_length = $4,
            started_at = $5, completed_at = $6, result = $7, error = $8
        WHERE job_id = $1;`,
		job.JobID, string(job.Status), metadata, job.TextLength,
		job.StartedAt, job.CompletedAt, result, job.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return job, nil
}

// Delete implements schemas.JobStore.
func (p *Postgres) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM analysis_jobs WHERE job_id = $1;`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List implements schemas.JobStore, newest first.
func (p *Postgres) List(ctx context.Context) ([]*schemas.Job, error) {
	rows, err := p.pool.Query(ctx, `
        SELECT `+jobColumns+` FROM analysis_jobs ORDER BY created_at DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*schemas.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return jobs, nil
}

func encodeJSONFields(job *schemas.Job) (metadata []byte, result []byte, err error) {
	metadata = []byte("{}")
	if job.Metadata != nil {
		if metadata, err = json.Marshal(job.Metadata); err != nil {
			return nil, nil, fmt.Errorf("failed to marshal job metadata: %w", err)
		}
	}
	if job.Result != nil {
		if result, err = json.Marshal(job.Result); err != nil {
			return nil, nil, fmt.Errorf("failed to marshal job result: %w", err)
		}
	}
	return metadata, result, nil
}

func scanJob(row pgx.Row) (*schemas.Job, error) {
	var (
		job      schemas.Job
		status   string
		source   string
		metadata []byte
		result   []byte
	)
	err := row.Scan(
		&job.JobID, &status, &source, &job.Filename, &metadata,
		&job.TextLength, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
		&result, &job.Error,
	)
	if err != nil {
		return nil, err
	}

	job.Status = schemas.JobStatus(status)
	job.Source = schemas.JobSource(source)
	if len(metadata) > 0 && string(metadata) != "null" {
		if err := json.Unmarshal(metadata, &job.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job metadata: %w", err)
		}
	}
	if len(result) > 0 && string(result) != "null" {
		var decoded any
		if err := json.Unmarshal(result, &decoded); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
		}
		job.Result = decoded
	}
	return &job, nil
}
