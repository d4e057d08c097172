package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"payflow-backend/internal/domains/payment/model"
	repo "payflow-backend/internal/domains/payment/repository"
	"payflow-backend/pkg/database"
)

// =====================================================
// PIPELINE SERVICE IMPLEMENTATION
// =====================================================

type pipelineService struct {
	pool        *pgxpool.Pool
	paymentRepo repo.PaymentRepository
	eventRepo   repo.EventLogRepository
	auditRepo   repo.AuditRepository
}

func NewPipelineService(
	pool *pgxpool.Pool,
	paymentRepo repo.PaymentRepository,
	eventRepo repo.EventLogRepository,
	auditRepo repo.AuditRepository,
) PipelineService {
	return &pipelineService{
		pool:        pool,
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		auditRepo:   auditRepo,
	}
}

// =====================================================
// PROCESS PAYMENT EVENT
// =====================================================

// ProcessPaymentEvent runs the full decision sequence in one transaction:
//
// 1. Set a 5s lock timeout so advisory-lock waiters fail instead of piling up.
// 2. Take the per-object advisory lock keyed on external_id.
// 3. Record the event in the event log; a prior delivery ends here (Duplicate).
// 4. No payment row yet: insert + audit "created".
// 5. Row exists: decide SameStatus / TemporalStale / LogAnomaly / Advance and
//    apply the matching writes.
func (s *pipelineService) ProcessPaymentEvent(
	ctx context.Context,
	incoming *model.IncomingPayment,
	actor string,
) (model.ProcessResult, error) {
	return database.WithTransactionResult(ctx, s.pool, func(tx pgx.Tx) (model.ProcessResult, error) {
		var none model.ProcessResult

		if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '5s'"); err != nil {
			return none, fmt.Errorf("failed to set lock timeout: %w", err)
		}

		// Serialize all processing for this external_id, even when no row
		// exists yet. Waiters queue here until the holder commits.
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", incoming.ExternalID.String()); err != nil {
			return none, fmt.Errorf("failed to acquire advisory lock: %w", err)
		}

		// Dedup: record the provider event. If already seen, bail early.
		isNew, err := s.eventRepo.InsertIfNew(ctx, tx, model.ProviderEvent{
			EventID:    incoming.EventID.String(),
			ObjectID:   incoming.ExternalID.String(),
			EventType:  incoming.EventType,
			ProviderTS: incoming.ProviderTS,
			Payload:    incoming.RawEvent,
		})
		if err != nil {
			return none, err
		}
		if !isNew {
			return model.ResultDuplicate(), nil
		}

		existing, err := s.paymentRepo.GetExisting(ctx, tx, incoming.ExternalID.String())
		if err != nil {
			return none, err
		}

		if existing == nil {
			return s.createPayment(ctx, tx, incoming, actor)
		}
		return s.applyDecision(ctx, tx, existing, incoming, actor)
	})
}

func (s *pipelineService) createPayment(
	ctx context.Context,
	tx pgx.Tx,
	incoming *model.IncomingPayment,
	actor string,
) (model.ProcessResult, error) {
	if err := s.paymentRepo.Insert(ctx, tx, incoming); err != nil {
		return model.ProcessResult{}, err
	}

	audit := incoming.AuditEntry(actor, model.AuditActionCreated)
	if _, err := s.auditRepo.Append(ctx, tx, audit); err != nil {
		return model.ProcessResult{}, err
	}

	return model.ResultCreated(incoming.ID), nil
}

func (s *pipelineService) applyDecision(
	ctx context.Context,
	tx pgx.Tx,
	existing *model.ExistingPayment,
	incoming *model.IncomingPayment,
	actor string,
) (model.ProcessResult, error) {
	var none model.ProcessResult
	id := existing.ID

	switch existing.Decide(incoming) {
	case model.ActionSameStatus:
		// Nothing to record; the delivery only refreshes tracking fields.
		if err := s.paymentRepo.TouchEventWithTS(ctx, tx, id, incoming.EventID.String(), incoming.ProviderTS); err != nil {
			return none, err
		}
		return model.ResultStale(id), nil

	case model.ActionTemporalStale:
		audit := incoming.AuditEntry(actor, model.AuditActionEventReceived)
		audit.EntityID = &id
		audit.Detail = map[string]interface{}{
			"event_type":      incoming.EventType,
			"current_status":  existing.Status.String(),
			"incoming_status": incoming.Status.String(),
			"stale":           true,
		}
		if _, err := s.auditRepo.Append(ctx, tx, audit); err != nil {
			return none, err
		}
		// Out-of-order delivery: track the event id but leave
		// last_provider_ts where the newer event put it.
		if err := s.paymentRepo.TouchEvent(ctx, tx, id, incoming.EventID.String()); err != nil {
			return none, err
		}
		return model.ResultStale(id), nil

	case model.ActionLogAnomaly:
		audit := incoming.AuditEntry(actor, model.AuditActionEventReceived)
		audit.EntityID = &id
		audit.Detail = map[string]interface{}{
			"event_type":      incoming.EventType,
			"current_status":  existing.Status.String(),
			"incoming_status": incoming.Status.String(),
			"anomaly":         true,
		}
		if _, err := s.auditRepo.Append(ctx, tx, audit); err != nil {
			return none, err
		}
		if err := s.paymentRepo.TouchEventWithTS(ctx, tx, id, incoming.EventID.String(), incoming.ProviderTS); err != nil {
			return none, err
		}

		log.Warn().
			Str("external_id", incoming.ExternalID.String()).
			Str("from", existing.Status.String()).
			Str("to", incoming.Status.String()).
			Msg("invalid status transition, logged as anomaly")

		return model.ResultAnomaly(id), nil

	default: // model.ActionAdvance
		if err := s.paymentRepo.UpdateStatus(ctx, tx, id, incoming); err != nil {
			return none, err
		}

		audit := incoming.AuditEntry(actor, model.AuditActionStatusChanged)
		audit.EntityID = &id
		audit.Detail = map[string]interface{}{
			"event_type": incoming.EventType,
			"old_status": existing.Status.String(),
			"new_status": incoming.Status.String(),
		}
		if _, err := s.auditRepo.Append(ctx, tx, audit); err != nil {
			return none, err
		}
		return model.ResultUpdated(id), nil
	}
}

// =====================================================
// PASSTHROUGH
// =====================================================

// HandlePassthrough logs an audit entry for events we never upsert
// (charges, unknown types).
func (s *pipelineService) HandlePassthrough(ctx context.Context, event *model.PassthroughEvent) (bool, error) {
	return database.WithTransactionResult(ctx, s.pool, func(tx pgx.Tx) (bool, error) {
		objectID := ""
		if event.ExternalID != nil {
			objectID = event.ExternalID.String()
		}

		isNew, err := s.eventRepo.InsertIfNew(ctx, tx, model.ProviderEvent{
			EventID:    event.EventID.String(),
			ObjectID:   objectID,
			EventType:  event.EventType,
			ProviderTS: event.ProviderTS,
			Payload:    event.RawPayload,
		})
		if err != nil {
			return false, err
		}
		if !isNew {
			return false, nil
		}

		// Link to the payment row when one exists for this object.
		var entityID *uuid.UUID
		var externalID *string
		if event.ExternalID != nil {
			raw := event.ExternalID.String()
			externalID = &raw

			paymentID, found, err := s.paymentRepo.FindID(ctx, tx, raw)
			if err != nil {
				return false, err
			}
			if found {
				entityID = &paymentID
			}
		}

		entry := model.NewAuditEntry(entityID, externalID, event.EventID.String(), model.AuditActionEventReceived, event.Actor, map[string]interface{}{
			"event_type":  event.EventType,
			"passthrough": true,
		})
		if _, err := s.auditRepo.Append(ctx, tx, entry); err != nil {
			return false, err
		}

		return true, nil
	})
}
