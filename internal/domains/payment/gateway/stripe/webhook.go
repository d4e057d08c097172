package stripe

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"payflow-backend/internal/domains/payment/gateway"
	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// WEBHOOK VERIFICATION & CLASSIFICATION
// =====================================================

type Verifier struct {
	secret string
}

// NewVerifier creates a signature verifier bound to the endpoint secret.
func NewVerifier(secret string) gateway.WebhookVerifier {
	return &Verifier{secret: secret}
}

// VerifyAndClassify checks the Stripe-Signature header against the payload
// and splits the delivery:
//
//   - payment_intent.* and refund.* events trigger async payment processing
//   - charge.* events pass through, linked to their payment intent when set
//   - everything else passes through unlinked
//
// A payment object with an unparseable id is classified TriggerIgnored so the
// caller can acknowledge it; Stripe must not retry those.
func (v *Verifier) VerifyAndClassify(payload []byte, signature string) (*model.WebhookTrigger, error) {
	if signature == "" {
		return nil, model.NewWebhookSignatureError(errors.New("missing Stripe-Signature header"))
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, model.NewWebhookSignatureError(err)
	}

	eventID, err := model.NewEventID(event.ID)
	if err != nil {
		return nil, err
	}

	eventType := string(event.Type)
	if eventType == "" {
		eventType = "unknown"
	}

	if event.Data == nil {
		return nil, model.NewSerializationError("event envelope has no data object", nil)
	}

	rawEvent := json.RawMessage(payload)

	switch {
	case strings.HasPrefix(eventType, "payment_intent."):
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, model.NewSerializationError("failed to parse payment intent payload", err)
		}
		return v.paymentTrigger(eventID, eventType, pi.ID, event.Created, rawEvent)

	case strings.HasPrefix(eventType, "refund."):
		var refund stripe.Refund
		if err := json.Unmarshal(event.Data.Raw, &refund); err != nil {
			return nil, model.NewSerializationError("failed to parse refund payload", err)
		}
		return v.paymentTrigger(eventID, eventType, refund.ID, event.Created, rawEvent)

	// charge.refund* deliveries (charge.refunded, charge.refund.updated)
	// mirror refund state the refund.* events already carry, so they pass
	// through without linking.
	case strings.HasPrefix(eventType, "charge.") && !strings.HasPrefix(eventType, "charge.refund"):
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, model.NewSerializationError("failed to parse charge payload", err)
		}
		var externalID *model.ExternalID
		if charge.PaymentIntent != nil && charge.PaymentIntent.ID != "" {
			id, err := model.NewExternalID(charge.PaymentIntent.ID)
			if err != nil {
				return nil, err
			}
			externalID = &id
		}
		return passthrough(eventID, eventType, event.Created, rawEvent, externalID), nil

	default:
		return passthrough(eventID, eventType, event.Created, rawEvent, nil), nil
	}
}

func (v *Verifier) paymentTrigger(
	eventID model.EventID,
	eventType string,
	objectID string,
	providerTS int64,
	rawEvent json.RawMessage,
) (*model.WebhookTrigger, error) {
	externalID, err := model.NewExternalID(objectID)
	if err != nil {
		log.Warn().
			Str("event_type", eventType).
			Str("object_id", objectID).
			Err(err).
			Msg("skipping payment event with invalid object id")
		return &model.WebhookTrigger{Kind: model.TriggerIgnored}, nil
	}

	return &model.WebhookTrigger{
		Kind: model.TriggerPayment,
		Payment: &model.PaymentTrigger{
			EventID:    eventID,
			EventType:  eventType,
			ExternalID: externalID,
			ProviderTS: providerTS,
			RawEvent:   rawEvent,
		},
	}, nil
}

func passthrough(
	eventID model.EventID,
	eventType string,
	providerTS int64,
	rawPayload json.RawMessage,
	externalID *model.ExternalID,
) *model.WebhookTrigger {
	return &model.WebhookTrigger{
		Kind: model.TriggerPassthrough,
		Passthrough: &model.PassthroughEvent{
			ExternalID: externalID,
			EventID:    eventID,
			EventType:  eventType,
			ProviderTS: providerTS,
			RawPayload: rawPayload,
			Actor:      model.ActorWebhookStripe,
		},
	}
}
