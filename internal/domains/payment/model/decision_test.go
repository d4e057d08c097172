package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func existing(status PaymentStatus, ts int64) *ExistingPayment {
	return &ExistingPayment{ID: uuid.Must(uuid.NewV7()), Status: status, LastProviderTS: ts}
}

func incoming(status PaymentStatus, ts int64) *IncomingPayment {
	money, _ := NewMoney(5000, CurrencyUSD)
	extID, _ := NewExternalID("pi_decide_test")
	evtID, _ := NewEventID("evt_decide_test")
	return NewIncomingPayment(IncomingPaymentParams{
		ExternalID: extID,
		Source:     SourceStripe,
		EventType:  "payment_intent." + status.String(),
		Direction:  DirectionInbound,
		Money:      money,
		Status:     status,
		EventID:    evtID,
		ProviderTS: ts,
	})
}

func TestExistingPayment_Decide(t *testing.T) {
	tests := []struct {
		name     string
		existing *ExistingPayment
		incoming *IncomingPayment
		want     PaymentAction
	}{
		{
			name:     "valid transition with newer timestamp advances",
			existing: existing(StatusPending, 100),
			incoming: incoming(StatusSucceeded, 200),
			want:     ActionAdvance,
		},
		{
			name:     "same status short-circuits before everything",
			existing: existing(StatusPending, 100),
			incoming: incoming(StatusPending, 200),
			want:     ActionSameStatus,
		},
		{
			name:     "same status wins even when the event is older",
			existing: existing(StatusSucceeded, 100),
			incoming: incoming(StatusSucceeded, 50),
			want:     ActionSameStatus,
		},
		{
			name:     "older timestamp is temporally stale",
			existing: existing(StatusPending, 100),
			incoming: incoming(StatusSucceeded, 99),
			want:     ActionTemporalStale,
		},
		{
			name:     "equal timestamp falls through to the state machine",
			existing: existing(StatusPending, 100),
			incoming: incoming(StatusSucceeded, 100),
			want:     ActionAdvance,
		},
		{
			name:     "equal timestamp with forbidden transition is an anomaly",
			existing: existing(StatusSucceeded, 100),
			incoming: incoming(StatusFailed, 100),
			want:     ActionLogAnomaly,
		},
		{
			name:     "terminal row rejects further transitions",
			existing: existing(StatusFailed, 100),
			incoming: incoming(StatusSucceeded, 200),
			want:     ActionLogAnomaly,
		},
		{
			name:     "refund after success is an anomaly, not an advance",
			existing: existing(StatusSucceeded, 100),
			incoming: incoming(StatusRefunded, 200),
			want:     ActionLogAnomaly,
		},
		{
			name:     "stale check runs before the anomaly check",
			existing: existing(StatusSucceeded, 100),
			incoming: incoming(StatusFailed, 50),
			want:     ActionTemporalStale,
		},
		{
			name:     "pending to refunded advances",
			existing: existing(StatusPending, 100),
			incoming: incoming(StatusRefunded, 200),
			want:     ActionAdvance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.existing.Decide(tt.incoming))
		})
	}
}
