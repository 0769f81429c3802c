package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the stable classification of a failure surfaced to callers.
type ErrorKind string

const (
	ErrValidation              ErrorKind = "ValidationError"
	ErrNotFound                ErrorKind = "NotFound"
	ErrForbidden               ErrorKind = "Forbidden"
	ErrInvalidDefinition       ErrorKind = "InvalidDeploymentDefinition"
	ErrNameExhausted           ErrorKind = "NameGenerationExhausted"
	ErrOrchestratorUnavailable ErrorKind = "OrchestratorUnavailable"
	ErrOrchestratorRejected    ErrorKind = "OrchestratorRejected"
	ErrPartialFailure          ErrorKind = "PartialFailure"
	ErrInternal                ErrorKind = "InternalError"
)

// AppError carries a stable kind, a human-readable message, optional
// constraint details and the wrapped cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind, defaulting to ErrInternal for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrInternal
}

// DetailsOf extracts the constraint details of a classified error, if any.
func DetailsOf(err error) []string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: ErrValidation, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Kind: ErrForbidden, Message: message}
}

func NewInvalidDefinition(message string, details []string, err error) *AppError {
	return &AppError{Kind: ErrInvalidDefinition, Message: message, Details: details, Err: err}
}

func NewNameExhausted(message string) *AppError {
	return &AppError{Kind: ErrNameExhausted, Message: message}
}

func NewOrchestratorUnavailable(message string, err error) *AppError {
	return &AppError{Kind: ErrOrchestratorUnavailable, Message: message, Err: err}
}

func NewOrchestratorRejected(message string, err error) *AppError {
	return &AppError{Kind: ErrOrchestratorRejected, Message: message, Err: err}
}

func NewPartialFailure(message string, err error) *AppError {
	return &AppError{Kind: ErrPartialFailure, Message: message, Err: err}
}
