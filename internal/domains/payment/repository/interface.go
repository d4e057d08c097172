package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// PAYMENT REPOSITORY INTERFACE
// =====================================================

// PaymentRepository reads and writes payment rows. The Tx-taking methods are
// called inside the pipeline's transaction; GetByExternalID reads on its own.
type PaymentRepository interface {
	// GetExisting returns the decision read model, or nil when no row exists.
	GetExisting(ctx context.Context, tx pgx.Tx, externalID string) (*model.ExistingPayment, error)

	// FindID looks up a payment's UUID by external_id, for linking audit
	// entries. found is false when no row exists.
	FindID(ctx context.Context, tx pgx.Tx, externalID string) (id uuid.UUID, found bool, err error)

	// Insert writes a brand-new payment row.
	Insert(ctx context.Context, tx pgx.Tx, payment *model.IncomingPayment) error

	// UpdateStatus advances status plus tracking fields for a valid transition.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, payment *model.IncomingPayment) error

	// TouchEvent updates only last_event_id (temporal stale: the incoming
	// timestamp is older, last_provider_ts must not move).
	TouchEvent(ctx context.Context, tx pgx.Tx, id uuid.UUID, eventID string) error

	// TouchEventWithTS updates last_event_id and bumps last_provider_ts to
	// the max of itself and the incoming timestamp.
	TouchEventWithTS(ctx context.Context, tx pgx.Tx, id uuid.UUID, eventID string, providerTS int64) error

	// GetByExternalID returns the full row, or model.ErrPaymentNotFound.
	GetByExternalID(ctx context.Context, externalID string) (*model.Payment, error)
}

// =====================================================
// EVENT LOG REPOSITORY INTERFACE
// =====================================================

// EventLogRepository is the durable dedup set keyed by event_id.
type EventLogRepository interface {
	// InsertIfNew records a provider delivery. Returns true iff the row was
	// inserted; false signals a prior delivery.
	InsertIfNew(ctx context.Context, tx pgx.Tx, event model.ProviderEvent) (bool, error)
}

// =====================================================
// AUDIT REPOSITORY INTERFACE
// =====================================================

// AuditRepository appends to the audit trail.
type AuditRepository interface {
	// Append inserts an audit entry inside the caller's transaction. The
	// insert is idempotent on event_id; false means an entry for this
	// event already existed.
	Append(ctx context.Context, tx pgx.Tx, entry model.AuditEntry) (bool, error)
}

// =====================================================
// JOB REPOSITORY INTERFACE
// =====================================================

// JobRepository is the durable queue on payment_jobs.
type JobRepository interface {
	// Enqueue inserts a job once per event_id. Returns true iff accepted.
	Enqueue(ctx context.Context, params model.EnqueueJobParams) (bool, error)

	// Claim leases up to limit due pending jobs, moving them to processing.
	// Runs in one short transaction; locked rows are skipped so concurrent
	// workers never contend on the same rows.
	Claim(ctx context.Context, limit int) ([]model.Job, error)

	// Complete marks a job done.
	Complete(ctx context.Context, id uuid.UUID) error

	// Fail records an attempt failure. At max_attempts the job goes to the
	// terminal failed state, otherwise back to pending with exponential
	// backoff on scheduled_at.
	Fail(ctx context.Context, id uuid.UUID, errMsg string) error

	// ReapStale resets processing jobs untouched for longer than olderThan
	// back to pending. Returns the count reset.
	ReapStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
