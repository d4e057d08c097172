package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payflow-backend/internal/domains/payment/model"
	"payflow-backend/pkg/database"
)

// =====================================================
// JOB REPOSITORY IMPLEMENTATION
// =====================================================

type jobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

// Enqueue inserts a job for async processing, once per event_id.
func (r *jobRepository) Enqueue(ctx context.Context, params model.EnqueueJobParams) (bool, error) {
	query := `
		INSERT INTO payment_jobs (event_id, object_id, event_type, provider_ts, raw_event, max_attempts)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING true
	`

	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		params.EventID,
		params.ObjectID,
		params.EventType,
		params.ProviderTS,
		[]byte(params.RawEvent),
		maxAttempts,
	).Scan(&inserted)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to enqueue job: %w", err)
	}

	return true, nil
}

// Claim leases up to limit due jobs in one short transaction. SKIP LOCKED
// keeps concurrent workers off each other's rows.
func (r *jobRepository) Claim(ctx context.Context, limit int) ([]model.Job, error) {
	query := `
		UPDATE payment_jobs
		SET status = 'processing', updated_at = now()
		WHERE id IN (
			SELECT id FROM payment_jobs
			WHERE status = 'pending' AND scheduled_at <= now()
			ORDER BY scheduled_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id, object_id, event_type, provider_ts, raw_event,
		          status, attempts, max_attempts, last_error, scheduled_at, updated_at
	`

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) ([]model.Job, error) {
		rows, err := tx.Query(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to claim jobs: %w", err)
		}
		defer rows.Close()

		var jobs []model.Job
		for rows.Next() {
			var (
				job       model.Job
				rawStatus string
				rawEvent  []byte
			)
			if err := rows.Scan(
				&job.ID,
				&job.EventID,
				&job.ObjectID,
				&job.EventType,
				&job.ProviderTS,
				&rawEvent,
				&rawStatus,
				&job.Attempts,
				&job.MaxAttempts,
				&job.LastError,
				&job.ScheduledAt,
				&job.UpdatedAt,
			); err != nil {
				return nil, fmt.Errorf("failed to scan claimed job: %w", err)
			}
			job.RawEvent = rawEvent
			job.Status = model.JobStatus(rawStatus)
			jobs = append(jobs, job)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read claimed jobs: %w", err)
		}

		return jobs, nil
	})
}

// Complete marks a job as done.
func (r *jobRepository) Complete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE payment_jobs SET status = 'completed', updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

// Fail records a failure. Backoff doubles per attempt via scheduled_at; at
// max_attempts the job parks in the terminal failed state.
func (r *jobRepository) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE payment_jobs
		SET attempts = attempts + 1,
		    last_error = $2,
		    status = CASE
		        WHEN attempts + 1 >= max_attempts THEN 'failed'
		        ELSE 'pending'
		    END,
		    scheduled_at = CASE
		        WHEN attempts + 1 >= max_attempts THEN scheduled_at
		        ELSE now() + make_interval(secs => power(2, attempts + 1)::int)
		    END,
		    updated_at = now()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, errMsg); err != nil {
		return fmt.Errorf("failed to record job failure: %w", err)
	}
	return nil
}

// ReapStale returns processing jobs untouched for longer than olderThan to
// the pending pool.
func (r *jobRepository) ReapStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE payment_jobs
		SET status = 'pending', updated_at = now()
		WHERE status = 'processing' AND updated_at < now() - make_interval(secs => $1)
	`

	tag, err := r.pool.Exec(ctx, query, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to reap stale jobs: %w", err)
	}

	return tag.RowsAffected(), nil
}
