package model

import (
	"github.com/google/uuid"
)

// =====================================================
// AUDIT TRAIL
// =====================================================

const EntityTypePayment = "payment"

// Audit actions. Closed set.
const (
	AuditActionCreated       = "created"
	AuditActionStatusChanged = "status_changed"
	AuditActionEventReceived = "event_received"
)

// Actor strings identify which entry point wrote the record.
const (
	ActorWebhookStripe = "webhook:stripe"
	ActorWorkerStripe  = "worker:stripe"
)

// AuditEntry is an immutable audit record. EventID is unique across the log,
// a secondary idempotency guard behind the event-log table.
type AuditEntry struct {
	ID         uuid.UUID              `json:"id" db:"id"`
	EntityType string                 `json:"entity_type" db:"entity_type"`
	EntityID   *uuid.UUID             `json:"entity_id,omitempty" db:"entity_id"`
	ExternalID *string                `json:"external_id,omitempty" db:"external_id"`
	EventID    string                 `json:"event_id" db:"event_id"`
	Action     string                 `json:"action" db:"action"`
	Actor      string                 `json:"actor" db:"actor"`
	Detail     map[string]interface{} `json:"detail" db:"detail"`
}

// NewAuditEntry fills in the generated id and entity type.
func NewAuditEntry(entityID *uuid.UUID, externalID *string, eventID, action, actor string, detail map[string]interface{}) AuditEntry {
	return AuditEntry{
		ID:         uuid.Must(uuid.NewV7()),
		EntityType: EntityTypePayment,
		EntityID:   entityID,
		ExternalID: externalID,
		EventID:    eventID,
		Action:     action,
		Actor:      actor,
		Detail:     detail,
	}
}
