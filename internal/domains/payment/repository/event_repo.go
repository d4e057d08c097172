package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// EVENT LOG REPOSITORY IMPLEMENTATION
// =====================================================

type eventLogRepository struct{}

func NewEventLogRepository() EventLogRepository {
	return &eventLogRepository{}
}

// InsertIfNew records a provider delivery for dedup. The RETURNING clause
// yields a row only on a fresh insert, so no-rows means duplicate.
func (r *eventLogRepository) InsertIfNew(ctx context.Context, tx pgx.Tx, event model.ProviderEvent) (bool, error) {
	query := `
		INSERT INTO provider_events (event_id, object_id, event_type, provider_ts, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING true
	`

	var inserted bool
	err := tx.QueryRow(ctx, query,
		event.EventID,
		event.ObjectID,
		event.EventType,
		event.ProviderTS,
		[]byte(event.Payload),
	).Scan(&inserted)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert provider event: %w", err)
	}

	return true, nil
}
