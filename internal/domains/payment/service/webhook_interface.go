package service

import (
	"context"

	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// WEBHOOK SERVICE INTERFACE
// =====================================================

// WebhookService is the entry point for provider deliveries. It owns
// signature verification and routing; the handler only moves bytes and maps
// the acknowledgement onto the wire.
type WebhookService interface {
	// ProcessWebhook verifies one delivery and routes it. Payment events are
	// enqueued for the worker pool (or, in inline mode, run through the
	// pipeline synchronously); charge and unrecognized events are recorded as
	// passthrough. The returned ack is the status the provider sees.
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (model.WebhookAck, error)
}
