package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// AUDIT REPOSITORY IMPLEMENTATION
// =====================================================

type auditRepository struct{}

func NewAuditRepository() AuditRepository {
	return &auditRepository{}
}

// Append inserts an audit entry. Conflicts on event_id are swallowed so a
// duplicate delivery can never fail the caller's transaction.
func (r *auditRepository) Append(ctx context.Context, tx pgx.Tx, entry model.AuditEntry) (bool, error) {
	query := `
		INSERT INTO audit_log (id, entity_type, entity_id, external_id, event_id, action, actor, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`

	detailJSON, err := json.Marshal(entry.Detail)
	if err != nil {
		return false, fmt.Errorf("failed to marshal audit detail: %w", err)
	}

	tag, err := tx.Exec(ctx, query,
		entry.ID,
		entry.EntityType,
		entry.EntityID,
		entry.ExternalID,
		entry.EventID,
		entry.Action,
		entry.Actor,
		detailJSON,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
