package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// =====================================================
// JOB QUEUE
// =====================================================

// JobStatus is the queue row lifecycle. Completed and failed are terminal
// and kept as history.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one durable queue row. Created once per event_id, leased by
// workers, retried with exponential backoff until completed, failed, or
// reaped back to pending.
type Job struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	EventID     string          `json:"event_id" db:"event_id"`
	ObjectID    string          `json:"object_id" db:"object_id"`
	EventType   string          `json:"event_type" db:"event_type"`
	ProviderTS  int64           `json:"provider_ts" db:"provider_ts"`
	RawEvent    json.RawMessage `json:"raw_event" db:"raw_event"`
	Status      JobStatus       `json:"status" db:"status"`
	Attempts    int             `json:"attempts" db:"attempts"`
	MaxAttempts int             `json:"max_attempts" db:"max_attempts"`
	LastError   *string         `json:"last_error,omitempty" db:"last_error"`
	ScheduledAt time.Time       `json:"scheduled_at" db:"scheduled_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// EnqueueJobParams is what the webhook hands the queue.
type EnqueueJobParams struct {
	EventID     string
	ObjectID    string
	EventType   string
	ProviderTS  int64
	RawEvent    json.RawMessage
	MaxAttempts int
}
