package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payflow-backend/internal/domains/payment/gateway"
	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// FAKES
// =====================================================

type fakeJobRepo struct {
	jobs      []model.Job
	claimErr  error
	completed []uuid.UUID
	failed    map[uuid.UUID]string
	reaped    int64
	reapErr   error
	reapCalls int
}

func newFakeJobRepo(jobs ...model.Job) *fakeJobRepo {
	return &fakeJobRepo{jobs: jobs, failed: map[uuid.UUID]string{}}
}

func (f *fakeJobRepo) Enqueue(ctx context.Context, params model.EnqueueJobParams) (bool, error) {
	return true, nil
}

func (f *fakeJobRepo) Claim(ctx context.Context, limit int) ([]model.Job, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if limit > len(f.jobs) {
		limit = len(f.jobs)
	}
	claimed := f.jobs[:limit]
	f.jobs = f.jobs[limit:]
	return claimed, nil
}

func (f *fakeJobRepo) Complete(ctx context.Context, id uuid.UUID) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeJobRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	f.failed[id] = errMsg
	return nil
}

func (f *fakeJobRepo) ReapStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.reapCalls++
	return f.reaped, f.reapErr
}

type fakeProvider struct {
	fetched *gateway.FetchedPayment
	err     error
	lastID  model.ExternalID
}

func (f *fakeProvider) FetchPayment(ctx context.Context, id model.ExternalID) (*gateway.FetchedPayment, error) {
	f.lastID = id
	return f.fetched, f.err
}

type fakePipeline struct {
	result       model.ProcessResult
	err          error
	lastIncoming *model.IncomingPayment
	lastActor    string
}

func (f *fakePipeline) ProcessPaymentEvent(ctx context.Context, incoming *model.IncomingPayment, actor string) (model.ProcessResult, error) {
	f.lastIncoming = incoming
	f.lastActor = actor
	return f.result, f.err
}

func (f *fakePipeline) HandlePassthrough(ctx context.Context, event *model.PassthroughEvent) (bool, error) {
	return false, nil
}

// =====================================================
// HELPERS
// =====================================================

func queuedJob(eventID, objectID string) model.Job {
	return model.Job{
		ID:          uuid.Must(uuid.NewV7()),
		EventID:     eventID,
		ObjectID:    objectID,
		EventType:   "payment_intent.succeeded",
		ProviderTS:  1700000000,
		RawEvent:    json.RawMessage(`{"id":"` + eventID + `"}`),
		Status:      model.JobStatusProcessing,
		MaxAttempts: 5,
	}
}

func succeededIntent(t *testing.T) *gateway.FetchedPayment {
	t.Helper()
	extID, err := model.NewExternalID("pi_worker_1")
	require.NoError(t, err)
	money, err := model.NewMoney(5000, model.CurrencyUSD)
	require.NoError(t, err)
	return &gateway.FetchedPayment{
		ExternalID: extID,
		Direction:  model.DirectionInbound,
		Status:     model.StatusSucceeded,
		Money:      money,
		Created:    1700000000,
	}
}

// =====================================================
// TESTS
// =====================================================

func TestWorker_ProcessesJobAndCompletes(t *testing.T) {
	j := queuedJob("evt_w_1", "pi_worker_1")
	jobs := newFakeJobRepo(j)
	provider := &fakeProvider{fetched: succeededIntent(t)}
	pipeline := &fakePipeline{result: model.ResultCreated(uuid.Must(uuid.NewV7()))}

	w := NewWorker(jobs, provider, pipeline, time.Second, 10)
	require.NoError(t, w.pollOnce(context.Background()))

	assert.Equal(t, []uuid.UUID{j.ID}, jobs.completed)
	assert.Empty(t, jobs.failed)
	assert.Equal(t, "pi_worker_1", provider.lastID.String())

	require.NotNil(t, pipeline.lastIncoming)
	assert.Equal(t, model.ActorWorkerStripe, pipeline.lastActor)
	assert.Equal(t, model.StatusSucceeded, pipeline.lastIncoming.Status, "status comes from the refetch")
	assert.Equal(t, "payment_intent.succeeded", pipeline.lastIncoming.EventType, "event type comes from the job")
	assert.Equal(t, "evt_w_1", pipeline.lastIncoming.EventID.String())
	assert.Equal(t, int64(1700000000), pipeline.lastIncoming.ProviderTS)
}

func TestWorker_PoisonPillsAreCompletedWithoutProcessing(t *testing.T) {
	tests := []struct {
		name     string
		eventID  string
		objectID string
	}{
		{"garbage event id", "not_an_event", "pi_worker_1"},
		{"garbage object id", "evt_w_2", "not_an_object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := queuedJob(tt.eventID, tt.objectID)
			jobs := newFakeJobRepo(j)
			provider := &fakeProvider{fetched: succeededIntent(t)}
			pipeline := &fakePipeline{}

			w := NewWorker(jobs, provider, pipeline, time.Second, 10)
			require.NoError(t, w.pollOnce(context.Background()))

			assert.Equal(t, []uuid.UUID{j.ID}, jobs.completed, "garbage rows are swallowed, not retried")
			assert.Empty(t, jobs.failed)
			assert.Nil(t, pipeline.lastIncoming, "the pipeline never runs for garbage")
		})
	}
}

func TestWorker_ValidationErrorCompletesWithoutRetry(t *testing.T) {
	j := queuedJob("evt_w_3", "pi_worker_1")
	jobs := newFakeJobRepo(j)
	provider := &fakeProvider{err: model.NewValidationError("unsupported currency: xyz")}

	w := NewWorker(jobs, provider, &fakePipeline{}, time.Second, 10)
	require.NoError(t, w.pollOnce(context.Background()))

	assert.Equal(t, []uuid.UUID{j.ID}, jobs.completed)
	assert.Empty(t, jobs.failed)
}

func TestWorker_SerializationErrorCompletesWithoutRetry(t *testing.T) {
	j := queuedJob("evt_w_4", "pi_worker_1")
	jobs := newFakeJobRepo(j)
	provider := &fakeProvider{err: model.NewSerializationError("bad payload", nil)}

	w := NewWorker(jobs, provider, &fakePipeline{}, time.Second, 10)
	require.NoError(t, w.pollOnce(context.Background()))

	assert.Equal(t, []uuid.UUID{j.ID}, jobs.completed)
	assert.Empty(t, jobs.failed)
}

func TestWorker_TransientErrorsScheduleRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"provider outage", model.NewProviderError("retrieve failed", errors.New("503"))},
		{"database error", model.NewDatabaseError("tx aborted", nil)},
		{"unclassified error", errors.New("something odd")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := queuedJob("evt_w_5", "pi_worker_1")
			jobs := newFakeJobRepo(j)
			provider := &fakeProvider{err: tt.err}

			w := NewWorker(jobs, provider, &fakePipeline{}, time.Second, 10)
			require.NoError(t, w.pollOnce(context.Background()))

			assert.Empty(t, jobs.completed)
			require.Contains(t, jobs.failed, j.ID)
			assert.NotEmpty(t, jobs.failed[j.ID])
		})
	}
}

func TestWorker_PipelineErrorSchedulesRetry(t *testing.T) {
	j := queuedJob("evt_w_6", "pi_worker_1")
	jobs := newFakeJobRepo(j)
	provider := &fakeProvider{fetched: succeededIntent(t)}
	pipeline := &fakePipeline{err: model.NewDatabaseError("lock timeout", nil)}

	w := NewWorker(jobs, provider, pipeline, time.Second, 10)
	require.NoError(t, w.pollOnce(context.Background()))

	require.Contains(t, jobs.failed, j.ID)
	assert.Contains(t, jobs.failed[j.ID], "lock timeout")
}

func TestWorker_ClaimErrorPropagates(t *testing.T) {
	jobs := newFakeJobRepo()
	jobs.claimErr = model.NewDatabaseError("conn refused", nil)

	w := NewWorker(jobs, &fakeProvider{}, &fakePipeline{}, time.Second, 10)
	err := w.pollOnce(context.Background())
	require.Error(t, err)
}

func TestWorker_ProcessesWholeBatch(t *testing.T) {
	j1 := queuedJob("evt_b_1", "pi_worker_1")
	j2 := queuedJob("evt_b_2", "pi_worker_1")
	jobs := newFakeJobRepo(j1, j2)
	provider := &fakeProvider{fetched: succeededIntent(t)}
	pipeline := &fakePipeline{result: model.ResultUpdated(uuid.Must(uuid.NewV7()))}

	w := NewWorker(jobs, provider, pipeline, time.Second, 10)
	require.NoError(t, w.pollOnce(context.Background()))

	assert.ElementsMatch(t, []uuid.UUID{j1.ID, j2.ID}, jobs.completed)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	jobs := newFakeJobRepo()
	w := NewWorker(jobs, &fakeProvider{}, &fakePipeline{}, 5*time.Millisecond, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestReaper_RunReapsOnTick(t *testing.T) {
	jobs := newFakeJobRepo()
	jobs.reaped = 3

	r := NewReaper(jobs, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}

	assert.Greater(t, jobs.reapCalls, 0, "reaper must fire at least once")
}
