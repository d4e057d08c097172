package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	// Exhaustive grid. Only the three pending edges are allowed.
	all := []PaymentStatus{StatusPending, StatusSucceeded, StatusFailed, StatusRefunded}

	allowed := map[PaymentStatus]map[PaymentStatus]bool{
		StatusPending: {
			StatusSucceeded: true,
			StatusFailed:    true,
			StatusRefunded:  true,
		},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			got := from.CanTransitionTo(to)
			assert.Equal(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestPaymentStatus_SelfLoopsAreInvalid(t *testing.T) {
	for _, s := range []PaymentStatus{StatusPending, StatusSucceeded, StatusFailed, StatusRefunded} {
		assert.False(t, s.CanTransitionTo(s), "self loop %s", s)
	}
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status PaymentStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusSucceeded, true},
		{StatusFailed, true},
		{StatusRefunded, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.IsTerminal(), "status %s", tt.status)
	}
}

func TestParsePaymentStatus(t *testing.T) {
	// Round trip: every constant parses back to itself.
	for _, s := range []PaymentStatus{StatusPending, StatusSucceeded, StatusFailed, StatusRefunded} {
		got, err := ParsePaymentStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParsePaymentStatus("cancelled")
	require.Error(t, err)
	assert.Equal(t, ErrKindValidation, KindOf(err))
}

func TestParsePaymentDirection(t *testing.T) {
	for _, d := range []PaymentDirection{DirectionInbound, DirectionOutbound} {
		got, err := ParsePaymentDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParsePaymentDirection("sideways")
	require.Error(t, err)
	assert.Equal(t, ErrKindValidation, KindOf(err))
}
