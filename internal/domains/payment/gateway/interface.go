package gateway

import (
	"context"

	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// GATEWAY INTERFACES
// =====================================================

// PaymentProvider fetches the authoritative current state of a payment
// object. The pipeline treats the fetched record, never the webhook payload,
// as the source of truth for status and money.
type PaymentProvider interface {
	// FetchPayment dispatches by id prefix to the matching provider endpoint.
	FetchPayment(ctx context.Context, id model.ExternalID) (*FetchedPayment, error)
}

// WebhookVerifier checks a delivery's signature and splits the payload into
// a payment trigger or a passthrough event.
type WebhookVerifier interface {
	// VerifyAndClassify returns a webhook-signature error when the signature
	// is missing or rejected, and a serialization error when the envelope
	// cannot be parsed.
	VerifyAndClassify(payload []byte, signature string) (*model.WebhookTrigger, error)
}

// =====================================================
// COMMON TYPES
// =====================================================

// FetchedPayment is the provider's current view of one payment object.
type FetchedPayment struct {
	ExternalID       model.ExternalID
	Direction        model.PaymentDirection
	Status           model.PaymentStatus
	Money            model.Money
	Metadata         map[string]interface{}
	ParentExternalID *model.ExternalID
	Created          int64
}
