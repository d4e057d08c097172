package service

import (
	"context"

	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// PIPELINE SERVICE INTERFACE
// =====================================================

// PipelineService is the decision engine. One call, one transaction: dedup
// on event_id, serialize on external_id, then insert the payment row or
// derive an action from the existing one.
type PipelineService interface {
	// ProcessPaymentEvent classifies one incoming event into exactly one of
	// Created, Updated, Stale, Anomaly, or Duplicate, applying the matching
	// writes and audit entries atomically. The actor string records which
	// entry point drove the call, e.g. "webhook:stripe" or "worker:stripe".
	ProcessPaymentEvent(ctx context.Context, incoming *model.IncomingPayment, actor string) (model.ProcessResult, error)

	// HandlePassthrough records a delivery that never materializes a payment
	// row: the event log gets the dedup entry and the audit trail gets an
	// event_received record, linked to a payment when one matches the
	// delivery's external id. Returns true iff this delivery was new.
	HandlePassthrough(ctx context.Context, event *model.PassthroughEvent) (bool, error)
}
