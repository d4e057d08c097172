package model

import "encoding/json"

// ProviderEvent is an event-log row. Its sole role is deduplication of
// provider deliveries, keyed by EventID.
type ProviderEvent struct {
	EventID    string          `json:"event_id" db:"event_id"`
	ObjectID   string          `json:"object_id" db:"object_id"`
	EventType  string          `json:"event_type" db:"event_type"`
	ProviderTS int64           `json:"provider_ts" db:"provider_ts"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
}

// PaymentTrigger is a verified delivery about a payment object. It carries
// everything the job queue needs; the worker refetches authoritative state
// before running the pipeline.
type PaymentTrigger struct {
	EventID    EventID
	EventType  string
	ExternalID ExternalID
	ProviderTS int64
	RawEvent   json.RawMessage
}

// PassthroughEvent is a delivery we record but never materialize as a
// payment (charges, unrecognized types). ExternalID is best effort; a charge
// carries its payment intent id when the provider included one.
type PassthroughEvent struct {
	ExternalID *ExternalID
	EventID    EventID
	EventType  string
	ProviderTS int64
	RawPayload json.RawMessage
	Actor      string
}

// TriggerKind discriminates a classified webhook delivery.
type TriggerKind int

const (
	// TriggerPayment enqueues a job for the worker pool.
	TriggerPayment TriggerKind = iota
	// TriggerPassthrough records the event without touching payment rows.
	TriggerPassthrough
	// TriggerIgnored marks a payment object whose id failed validation. The
	// provider must not retry, so the caller acknowledges and drops it.
	TriggerIgnored
)

// WebhookTrigger is the classification of one verified delivery. The field
// matching Kind is set; TriggerIgnored carries neither.
type WebhookTrigger struct {
	Kind        TriggerKind
	Payment     *PaymentTrigger
	Passthrough *PassthroughEvent
}
