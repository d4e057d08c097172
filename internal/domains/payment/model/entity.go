package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// =====================================================
// PAYMENT ENTITY
// =====================================================

// SourceStripe tags rows materialized from Stripe deliveries.
const SourceStripe = "stripe"

// Payment is the materialized payment row. Created exactly once per
// external_id, mutated only by the pipeline under the per-object lock,
// never deleted.
type Payment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ExternalID string    `json:"external_id" db:"external_id"`

	// Provenance
	Source    string `json:"source" db:"source"`
	EventType string `json:"event_type" db:"event_type"`
	Direction string `json:"direction" db:"direction"`

	// Amount
	Amount   int64  `json:"amount" db:"amount"`
	Currency string `json:"currency" db:"currency"`

	// Status tracking
	Status         string `json:"status" db:"status"`
	LastEventID    string `json:"last_event_id" db:"last_event_id"`
	LastProviderTS int64  `json:"last_provider_ts" db:"last_provider_ts"`

	// Payloads
	Metadata map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	RawEvent json.RawMessage        `json:"raw_event,omitempty" db:"raw_event"`

	// Refunds point back at the payment intent they reverse
	ParentExternalID *string `json:"parent_external_id,omitempty" db:"parent_external_id"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ExistingPayment is the read model the pipeline bases decisions on.
type ExistingPayment struct {
	ID             uuid.UUID
	Status         PaymentStatus
	LastProviderTS int64
}

// =====================================================
// INCOMING PAYMENT
// =====================================================

// IncomingPaymentParams names every field explicitly at the call site.
type IncomingPaymentParams struct {
	ExternalID       ExternalID
	Source           string
	EventType        string
	Direction        PaymentDirection
	Money            Money
	Status           PaymentStatus
	Metadata         map[string]interface{}
	RawEvent         json.RawMessage
	EventID          EventID
	ParentExternalID *ExternalID
	ProviderTS       int64
}

// IncomingPayment is a payment event materialized for the pipeline, either
// from a provider refetch (worker) or from the webhook payload (inline mode).
// The ID becomes the payment row id if this event creates the row.
type IncomingPayment struct {
	ID               uuid.UUID
	ExternalID       ExternalID
	Source           string
	EventType        string
	Direction        PaymentDirection
	Money            Money
	Status           PaymentStatus
	Metadata         map[string]interface{}
	RawEvent         json.RawMessage
	EventID          EventID
	ParentExternalID *ExternalID
	ProviderTS       int64
}

// NewIncomingPayment assigns a time-ordered UUID and copies the params.
func NewIncomingPayment(p IncomingPaymentParams) *IncomingPayment {
	return &IncomingPayment{
		ID:               uuid.Must(uuid.NewV7()),
		ExternalID:       p.ExternalID,
		Source:           p.Source,
		EventType:        p.EventType,
		Direction:        p.Direction,
		Money:            p.Money,
		Status:           p.Status,
		Metadata:         p.Metadata,
		RawEvent:         p.RawEvent,
		EventID:          p.EventID,
		ParentExternalID: p.ParentExternalID,
		ProviderTS:       p.ProviderTS,
	}
}

// AuditEntry builds the audit record for this event with the default detail
// payload {event_type, amount, currency, status}.
func (p *IncomingPayment) AuditEntry(actor, action string) AuditEntry {
	entityID := p.ID
	externalID := p.ExternalID.String()
	return AuditEntry{
		ID:         uuid.Must(uuid.NewV7()),
		EntityType: EntityTypePayment,
		EntityID:   &entityID,
		ExternalID: &externalID,
		EventID:    p.EventID.String(),
		Action:     action,
		Actor:      actor,
		Detail: map[string]interface{}{
			"event_type": p.EventType,
			"amount":     p.Money.Amount(),
			"currency":   p.Money.Currency().String(),
			"status":     p.Status.String(),
		},
	}
}
