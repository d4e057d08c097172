package model

import "strings"

// Identifier prefixes used by the provider. ExternalID prefixes double as
// the payment direction marker.
const (
	PrefixPaymentIntent = "pi_"
	PrefixRefund        = "re_"
	PrefixEvent         = "evt_"
)

// ExternalID is the provider's object identifier for a payment intent or a
// refund. Validated at construction.
type ExternalID string

// NewExternalID validates the prefix and wraps the raw id.
func NewExternalID(raw string) (ExternalID, error) {
	if !strings.HasPrefix(raw, PrefixPaymentIntent) && !strings.HasPrefix(raw, PrefixRefund) {
		return "", NewValidationError("external id must start with " + PrefixPaymentIntent + " or " + PrefixRefund + ": " + raw)
	}
	return ExternalID(raw), nil
}

func (id ExternalID) String() string {
	return string(id)
}

// Direction derives the payment direction from the id prefix. Payment
// intents are money in, refunds are money out.
func (id ExternalID) Direction() PaymentDirection {
	if strings.HasPrefix(string(id), PrefixRefund) {
		return DirectionOutbound
	}
	return DirectionInbound
}

// IsRefund reports whether the id names a refund object.
func (id ExternalID) IsRefund() bool {
	return strings.HasPrefix(string(id), PrefixRefund)
}

// EventID is the provider's delivery identifier, the primary idempotency key.
type EventID string

// NewEventID validates the prefix and wraps the raw id.
func NewEventID(raw string) (EventID, error) {
	if !strings.HasPrefix(raw, PrefixEvent) {
		return "", NewValidationError("event id must start with " + PrefixEvent + ": " + raw)
	}
	return EventID(raw), nil
}

func (id EventID) String() string {
	return string(id)
}
