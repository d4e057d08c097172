package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrJobNotFound     = errors.New("job not found")
)

// =====================================================
// ERROR TAXONOMY
// =====================================================

// ErrorKind classifies failures into the policy buckets the webhook handler
// and the worker act on.
type ErrorKind string

const (
	// ErrKindValidation covers bad identifier prefixes, unknown
	// currency/status/direction, negative amounts, and malformed fields.
	// Webhook: 422. Worker: complete the job (poison pill).
	ErrKindValidation ErrorKind = "validation"

	// ErrKindWebhookSignature covers a missing or rejected signature header.
	// Webhook: 400 with a generic message.
	ErrKindWebhookSignature ErrorKind = "webhook_signature"

	// ErrKindProvider covers upstream API errors and unknown id prefixes on
	// worker refetch. Worker: fail with backoff.
	ErrKindProvider ErrorKind = "provider"

	// ErrKindDatabase covers store errors, including lock-timeout waiters.
	// Webhook: 500 generic. Worker: fail with backoff.
	ErrKindDatabase ErrorKind = "database"

	// ErrKindSerialization covers envelope and payload parse errors.
	// Webhook: 500 generic. Worker: complete (unparseable forever).
	ErrKindSerialization ErrorKind = "serialization"
)

// AppError is the single error type crossing layer boundaries.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewValidationError(message string) *AppError {
	return &AppError{Kind: ErrKindValidation, Message: message}
}

func NewWebhookSignatureError(err error) *AppError {
	return &AppError{Kind: ErrKindWebhookSignature, Message: "invalid webhook signature", Err: err}
}

func NewProviderError(message string, err error) *AppError {
	return &AppError{Kind: ErrKindProvider, Message: message, Err: err}
}

func NewDatabaseError(message string, err error) *AppError {
	return &AppError{Kind: ErrKindDatabase, Message: message, Err: err}
}

func NewSerializationError(message string, err error) *AppError {
	return &AppError{Kind: ErrKindSerialization, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting unclassified errors to the
// database bucket so callers retry rather than drop.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrKindDatabase
}
