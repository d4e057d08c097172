package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// PAYMENT REPOSITORY IMPLEMENTATION
// =====================================================

type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

// GetExisting fetches the current state of a payment by external_id.
func (r *paymentRepository) GetExisting(ctx context.Context, tx pgx.Tx, externalID string) (*model.ExistingPayment, error) {
	query := `
		SELECT id, status, last_provider_ts
		FROM payments
		WHERE external_id = $1
	`

	var (
		id        uuid.UUID
		rawStatus string
		lastTS    int64
	)
	err := tx.QueryRow(ctx, query, externalID).Scan(&id, &rawStatus, &lastTS)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get existing payment: %w", err)
	}

	status, err := model.ParsePaymentStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	return &model.ExistingPayment{
		ID:             id,
		Status:         status,
		LastProviderTS: lastTS,
	}, nil
}

// FindID looks up a payment's UUID by external_id.
func (r *paymentRepository) FindID(ctx context.Context, tx pgx.Tx, externalID string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM payments WHERE external_id = $1`, externalID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to find payment id: %w", err)
	}
	return id, true, nil
}

// Insert writes a brand-new payment row.
func (r *paymentRepository) Insert(ctx context.Context, tx pgx.Tx, payment *model.IncomingPayment) error {
	query := `
		INSERT INTO payments
			(id, external_id, source, event_type, direction,
			 amount, currency, status, metadata, raw_event,
			 last_event_id, parent_external_id, last_provider_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	metadataJSON, err := json.Marshal(payment.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var parent *string
	if payment.ParentExternalID != nil {
		s := payment.ParentExternalID.String()
		parent = &s
	}

	_, err = tx.Exec(ctx, query,
		payment.ID,
		payment.ExternalID.String(),
		payment.Source,
		payment.EventType,
		payment.Direction.String(),
		payment.Money.Amount(),
		payment.Money.Currency().String(),
		payment.Status.String(),
		metadataJSON,
		[]byte(payment.RawEvent),
		payment.EventID.String(),
		parent,
		payment.ProviderTS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// UpdateStatus advances status plus tracking fields (valid transitions only).
func (r *paymentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, payment *model.IncomingPayment) error {
	query := `
		UPDATE payments
		SET status = $1, event_type = $2, metadata = $3,
		    last_event_id = $4, last_provider_ts = $5, updated_at = now()
		WHERE id = $6
	`

	metadataJSON, err := json.Marshal(payment.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = tx.Exec(ctx, query,
		payment.Status.String(),
		payment.EventType,
		metadataJSON,
		payment.EventID.String(),
		payment.ProviderTS,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return nil
}

// TouchEvent updates only event tracking. Used for temporal stale events,
// where last_provider_ts must not move backwards or forwards.
func (r *paymentRepository) TouchEvent(ctx context.Context, tx pgx.Tx, id uuid.UUID, eventID string) error {
	query := `UPDATE payments SET last_event_id = $1, updated_at = now() WHERE id = $2`

	if _, err := tx.Exec(ctx, query, eventID, id); err != nil {
		return fmt.Errorf("failed to touch payment event: %w", err)
	}
	return nil
}

// TouchEventWithTS updates event tracking and advances the provider
// timestamp monotonically. Used for same-status and anomaly events.
func (r *paymentRepository) TouchEventWithTS(ctx context.Context, tx pgx.Tx, id uuid.UUID, eventID string, providerTS int64) error {
	query := `
		UPDATE payments
		SET last_event_id = $1,
		    last_provider_ts = GREATEST(last_provider_ts, $2),
		    updated_at = now()
		WHERE id = $3
	`

	if _, err := tx.Exec(ctx, query, eventID, providerTS, id); err != nil {
		return fmt.Errorf("failed to touch payment event with ts: %w", err)
	}
	return nil
}

// GetByExternalID returns the full payment row.
func (r *paymentRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Payment, error) {
	query := `
		SELECT id, external_id, source, event_type, direction,
		       amount, currency, status, metadata, raw_event,
		       last_event_id, last_provider_ts, parent_external_id,
		       created_at, updated_at
		FROM payments
		WHERE external_id = $1
	`

	var (
		p            model.Payment
		metadataJSON []byte
		rawEvent     []byte
	)
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&p.ID,
		&p.ExternalID,
		&p.Source,
		&p.EventType,
		&p.Direction,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&metadataJSON,
		&rawEvent,
		&p.LastEventID,
		&p.LastProviderTS,
		&p.ParentExternalID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	p.RawEvent = json.RawMessage(rawEvent)

	return &p, nil
}
