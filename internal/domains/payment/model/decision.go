package model

import "github.com/google/uuid"

// =====================================================
// PROCESS RESULT
// =====================================================

// Outcome discriminates the five pipeline results. HTTP responses and worker
// acks are driven off this tag only.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeStale     Outcome = "stale"
	OutcomeAnomaly   Outcome = "anomaly"
	OutcomeDuplicate Outcome = "duplicate"
)

// ProcessResult is the pipeline's verdict for one event. PaymentID is unset
// for Duplicate.
type ProcessResult struct {
	Outcome   Outcome
	PaymentID uuid.UUID
}

func ResultCreated(id uuid.UUID) ProcessResult {
	return ProcessResult{Outcome: OutcomeCreated, PaymentID: id}
}

func ResultUpdated(id uuid.UUID) ProcessResult {
	return ProcessResult{Outcome: OutcomeUpdated, PaymentID: id}
}

func ResultStale(id uuid.UUID) ProcessResult {
	return ProcessResult{Outcome: OutcomeStale, PaymentID: id}
}

func ResultAnomaly(id uuid.UUID) ProcessResult {
	return ProcessResult{Outcome: OutcomeAnomaly, PaymentID: id}
}

func ResultDuplicate() ProcessResult {
	return ProcessResult{Outcome: OutcomeDuplicate}
}

// WebhookAck is the status acknowledged to the provider for one delivery.
type WebhookAck string

const (
	AckAccepted  WebhookAck = "accepted"
	AckCreated   WebhookAck = "created"
	AckUpdated   WebhookAck = "updated"
	AckSkipped   WebhookAck = "skipped"
	AckDuplicate WebhookAck = "duplicate"
	AckAnomaly   WebhookAck = "anomaly"
	AckLogged    WebhookAck = "logged"
	// AckIgnoredInvalidData acknowledges payment objects with ids we cannot
	// parse. The 200 stops the provider from retrying junk forever.
	AckIgnoredInvalidData WebhookAck = "ignored_invalid_data"
)

// =====================================================
// DECISION
// =====================================================

// PaymentAction is what the pipeline does with an event for an existing row.
type PaymentAction int

const (
	// ActionAdvance applies a valid status transition.
	ActionAdvance PaymentAction = iota
	// ActionSameStatus records nothing; the event only bumps tracking fields.
	ActionSameStatus
	// ActionTemporalStale marks an event older than the row's last seen
	// provider timestamp.
	ActionTemporalStale
	// ActionLogAnomaly marks a transition the state machine forbids.
	ActionLogAnomaly
)

// Decide is the pure decision function for an existing row. The insert case
// is handled by the caller before reaching this method. Order matters:
// same-status short-circuits first, then the temporal check (strict <, so
// equal timestamps fall through to the state machine), then the transition
// table.
func (e *ExistingPayment) Decide(incoming *IncomingPayment) PaymentAction {
	switch {
	case incoming.Status == e.Status:
		return ActionSameStatus
	case incoming.ProviderTS < e.LastProviderTS:
		return ActionTemporalStale
	case !e.Status.CanTransitionTo(incoming.Status):
		return ActionLogAnomaly
	default:
		return ActionAdvance
	}
}
