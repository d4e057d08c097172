package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", NewValidationError("bad prefix"), ErrKindValidation},
		{"webhook signature", NewWebhookSignatureError(errors.New("no header")), ErrKindWebhookSignature},
		{"provider", NewProviderError("retrieve failed", errors.New("503")), ErrKindProvider},
		{"database", NewDatabaseError("insert failed", errors.New("conn refused")), ErrKindDatabase},
		{"serialization", NewSerializationError("bad json", nil), ErrKindSerialization},
		{"plain error defaults to database", errors.New("who knows"), ErrKindDatabase},
		{"nil-wrapped app error unwraps", fmt.Errorf("context: %w", NewValidationError("inner")), ErrKindValidation},
		{"double-wrapped app error unwraps", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", NewProviderError("x", nil))), ErrKindProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	plain := NewValidationError("amount must be non-negative")
	assert.Equal(t, "validation: amount must be non-negative", plain.Error())

	wrapped := NewProviderError("retrieve failed", errors.New("timeout"))
	assert.Contains(t, wrapped.Error(), "provider: retrieve failed")
	assert.Contains(t, wrapped.Error(), "timeout")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := NewDatabaseError("query failed", inner)
	assert.True(t, errors.Is(err, inner))
}
