// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Generator failures. The escalation and drafting paths treat all three
	// identically: fall back to the deterministic template.
	ErrCodeGenerationUnavailable   ErrorCode = "GENERATION_UNAVAILABLE"
	ErrCodeGenerationTimeout       ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeGenerationInvalidOutput ErrorCode = "GENERATION_INVALID_OUTPUT"

	// Persistence failures.
	ErrCodeRecordNotFound           ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicateReference       ErrorCode = "DUPLICATE_REFERENCE"
	ErrCodeRefSequenceFailed        ErrorCode = "REF_SEQUENCE_FAILED"

	// Notification/search failures.
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeIndexingFailed         ErrorCode = "INDEXING_FAILED"
	ErrCodeSearchTimeout          ErrorCode = "SEARCH_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// FromStandardError converts a StandardError into a throwable BPMNError.
func FromStandardError(err *StandardError, retries int) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   retries,
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewRecordNotFoundError creates a non-retryable lookup error. This is the one
// condition the pipeline surfaces to callers as a hard failure.
func NewRecordNotFoundError(refNumber string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "No application found for reference number",
		Details:   fmt.Sprintf("refNumber: %s", refNumber),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a generator timeout error. Never surfaced
// past the fallback provider; recorded for metrics and logging only.
func NewGenerationTimeoutError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "External generator timed out",
		Details:   fmt.Sprintf("kind: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationUnavailableError creates a generator unavailability error.
func NewGenerationUnavailableError(kind string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationUnavailable,
		Message:   "External generator unavailable",
		Details:   fmt.Sprintf("kind: %s, error: %v", kind, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationInvalidOutputError creates an error for output that failed
// structural validation.
func NewGenerationInvalidOutputError(kind, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationInvalidOutput,
		Message:   "External generator returned unusable output",
		Details:   fmt.Sprintf("kind: %s, %s", kind, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateReferenceError creates a non-retryable duplicate reference error.
func NewDuplicateReferenceError(refNumber string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateReference,
		Message:   "An application with this reference number already exists",
		Details:   fmt.Sprintf("refNumber: %s", refNumber),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRefSequenceFailedError creates a retryable reference counter error.
func NewRefSequenceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRefSequenceFailed,
		Message:   "Reference number sequence allocation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Reminder notification could not be delivered",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable search indexing error.
func NewIndexingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Application could not be indexed for search",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search cluster timeout error.
func NewSearchTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search cluster did not respond in time",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
