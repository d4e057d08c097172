package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"payflow-backend/internal/domains/payment/gateway"
	"payflow-backend/internal/domains/payment/model"
	repo "payflow-backend/internal/domains/payment/repository"
)

// =====================================================
// WEBHOOK SERVICE IMPLEMENTATION
// =====================================================

type webhookService struct {
	verifier gateway.WebhookVerifier
	provider gateway.PaymentProvider
	pipeline PipelineService
	jobRepo  repo.JobRepository

	// inline runs the pipeline during the webhook request instead of
	// enqueuing. Useful for small deployments without a worker process.
	inline         bool
	jobMaxAttempts int
}

func NewWebhookService(
	verifier gateway.WebhookVerifier,
	provider gateway.PaymentProvider,
	pipeline PipelineService,
	jobRepo repo.JobRepository,
	inline bool,
	jobMaxAttempts int,
) WebhookService {
	return &webhookService{
		verifier:       verifier,
		provider:       provider,
		pipeline:       pipeline,
		jobRepo:        jobRepo,
		inline:         inline,
		jobMaxAttempts: jobMaxAttempts,
	}
}

// ProcessWebhook verifies the delivery, classifies it, and dispatches.
func (s *webhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (model.WebhookAck, error) {
	trigger, err := s.verifier.VerifyAndClassify(payload, signature)
	if err != nil {
		return "", err
	}

	switch trigger.Kind {
	case model.TriggerIgnored:
		return model.AckIgnoredInvalidData, nil

	case model.TriggerPassthrough:
		return s.processPassthrough(ctx, trigger.Passthrough)

	default: // model.TriggerPayment
		if s.inline {
			return s.processInline(ctx, trigger.Payment)
		}
		return s.enqueue(ctx, trigger.Payment)
	}
}

func (s *webhookService) processPassthrough(ctx context.Context, event *model.PassthroughEvent) (model.WebhookAck, error) {
	isNew, err := s.pipeline.HandlePassthrough(ctx, event)
	if err != nil {
		return "", err
	}

	if isNew {
		log.Info().
			Str("event_id", event.EventID.String()).
			Str("event_type", event.EventType).
			Msg("passthrough event logged")
		return model.AckLogged, nil
	}

	log.Info().
		Str("event_id", event.EventID.String()).
		Msg("duplicate event, already processed")
	return model.AckDuplicate, nil
}

func (s *webhookService) enqueue(ctx context.Context, t *model.PaymentTrigger) (model.WebhookAck, error) {
	inserted, err := s.jobRepo.Enqueue(ctx, model.EnqueueJobParams{
		EventID:     t.EventID.String(),
		ObjectID:    t.ExternalID.String(),
		EventType:   t.EventType,
		ProviderTS:  t.ProviderTS,
		RawEvent:    t.RawEvent,
		MaxAttempts: s.jobMaxAttempts,
	})
	if err != nil {
		return "", err
	}

	if inserted {
		log.Info().
			Str("event_id", t.EventID.String()).
			Str("event_type", t.EventType).
			Msg("payment event enqueued for async processing")
		return model.AckAccepted, nil
	}

	log.Info().
		Str("event_id", t.EventID.String()).
		Msg("duplicate event, already enqueued")
	return model.AckDuplicate, nil
}

// processInline fetches authoritative object state and runs the pipeline
// within the webhook request. The raw delivery rides along for storage; the
// fetched record supplies status, money, and direction.
func (s *webhookService) processInline(ctx context.Context, t *model.PaymentTrigger) (model.WebhookAck, error) {
	fetched, err := s.provider.FetchPayment(ctx, t.ExternalID)
	if err != nil {
		return "", err
	}

	incoming := model.NewIncomingPayment(model.IncomingPaymentParams{
		ExternalID:       fetched.ExternalID,
		Source:           model.SourceStripe,
		EventType:        t.EventType,
		Direction:        fetched.Direction,
		Money:            fetched.Money,
		Status:           fetched.Status,
		Metadata:         fetched.Metadata,
		RawEvent:         t.RawEvent,
		EventID:          t.EventID,
		ParentExternalID: fetched.ParentExternalID,
		ProviderTS:       t.ProviderTS,
	})

	result, err := s.pipeline.ProcessPaymentEvent(ctx, incoming, model.ActorWebhookStripe)
	if err != nil {
		return "", err
	}

	switch result.Outcome {
	case model.OutcomeCreated:
		log.Info().
			Str("payment_id", result.PaymentID.String()).
			Str("direction", incoming.Direction.String()).
			Msg("payment created")
		return model.AckCreated, nil
	case model.OutcomeUpdated:
		log.Info().
			Str("payment_id", result.PaymentID.String()).
			Str("direction", incoming.Direction.String()).
			Msg("payment updated")
		return model.AckUpdated, nil
	case model.OutcomeStale:
		log.Info().
			Str("payment_id", result.PaymentID.String()).
			Str("event_type", t.EventType).
			Msg("stale event, skipped")
		return model.AckSkipped, nil
	case model.OutcomeAnomaly:
		log.Warn().
			Str("payment_id", result.PaymentID.String()).
			Str("event_type", t.EventType).
			Msg("anomalous transition, logged")
		return model.AckAnomaly, nil
	default: // model.OutcomeDuplicate
		log.Info().
			Str("event_id", t.EventID.String()).
			Msg("duplicate event, already processed")
		return model.AckDuplicate, nil
	}
}
