package job

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"payflow-backend/internal/domains/payment/gateway"
	"payflow-backend/internal/domains/payment/model"
	repo "payflow-backend/internal/domains/payment/repository"
	"payflow-backend/internal/domains/payment/service"
)

// =====================================================
// JOB WORKER
// =====================================================

// Worker drains the durable queue: claim a batch under row locks, refetch
// authoritative object state per job, run the pipeline, ack the job.
type Worker struct {
	jobRepo   repo.JobRepository
	provider  gateway.PaymentProvider
	pipeline  service.PipelineService
	pollEvery time.Duration
	batch     int
}

func NewWorker(
	jobRepo repo.JobRepository,
	provider gateway.PaymentProvider,
	pipeline service.PipelineService,
	pollEvery time.Duration,
	batch int,
) *Worker {
	return &Worker{
		jobRepo:   jobRepo,
		provider:  provider,
		pipeline:  pipeline,
		pollEvery: pollEvery,
		batch:     batch,
	}
}

// Run polls until ctx is canceled. Safe to run several copies concurrently;
// claiming skips rows other workers hold. A job abandoned mid-iteration stays
// processing until the reaper returns it to the pool.
func (w *Worker) Run(ctx context.Context) {
	log.Info().Msg("job worker started")

	t := time.NewTicker(w.pollEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("job worker shutting down")
			return
		case <-t.C:
			if err := w.pollOnce(ctx); err != nil {
				log.Error().Err(err).Msg("worker poll error")
			}
		}
	}
}

func (w *Worker) pollOnce(ctx context.Context) error {
	jobs, err := w.jobRepo.Claim(ctx, w.batch)
	if err != nil {
		return err
	}

	for _, j := range jobs {
		if err := w.processJob(ctx, j); err != nil {
			return err
		}
	}
	return nil
}

// processJob returns an error only when the ack itself cannot be written;
// processing failures are recorded on the job row instead.
func (w *Worker) processJob(ctx context.Context, j model.Job) error {
	eventID, err := model.NewEventID(j.EventID)
	if err != nil {
		log.Warn().Str("event_id", j.EventID).Err(err).Msg("invalid event_id, completing as garbage")
		return w.jobRepo.Complete(ctx, j.ID)
	}

	externalID, err := model.NewExternalID(j.ObjectID)
	if err != nil {
		log.Warn().Str("object_id", j.ObjectID).Err(err).Msg("invalid external_id, completing as garbage")
		return w.jobRepo.Complete(ctx, j.ID)
	}

	result, err := w.runPipeline(ctx, j, eventID, externalID)
	if err != nil {
		switch model.KindOf(err) {
		// Bad data never gets better; retrying would loop forever.
		case model.ErrKindValidation:
			log.Warn().Str("job_id", j.ID.String()).Err(err).Msg("validation error, completing (no retry)")
			return w.jobRepo.Complete(ctx, j.ID)
		case model.ErrKindSerialization:
			log.Warn().Str("job_id", j.ID.String()).Err(err).Msg("unparseable payload, completing (no retry)")
			return w.jobRepo.Complete(ctx, j.ID)
		default:
			log.Error().Str("job_id", j.ID.String()).Err(err).Msg("job failed, scheduling retry")
			return w.jobRepo.Fail(ctx, j.ID, err.Error())
		}
	}

	log.Info().
		Str("job_id", j.ID.String()).
		Str("outcome", string(result.Outcome)).
		Msg("job processed")
	return w.jobRepo.Complete(ctx, j.ID)
}

// runPipeline treats the provider as the source of truth: status, money, and
// direction come from the refetch, never from the stored webhook payload.
func (w *Worker) runPipeline(
	ctx context.Context,
	j model.Job,
	eventID model.EventID,
	externalID model.ExternalID,
) (model.ProcessResult, error) {
	fetched, err := w.provider.FetchPayment(ctx, externalID)
	if err != nil {
		return model.ProcessResult{}, err
	}

	incoming := model.NewIncomingPayment(model.IncomingPaymentParams{
		ExternalID:       fetched.ExternalID,
		Source:           model.SourceStripe,
		EventType:        j.EventType,
		Direction:        fetched.Direction,
		Money:            fetched.Money,
		Status:           fetched.Status,
		Metadata:         fetched.Metadata,
		RawEvent:         j.RawEvent,
		EventID:          eventID,
		ParentExternalID: fetched.ParentExternalID,
		ProviderTS:       j.ProviderTS,
	})

	return w.pipeline.ProcessPaymentEvent(ctx, incoming, model.ActorWorkerStripe)
}
