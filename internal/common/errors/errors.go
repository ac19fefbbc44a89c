// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidAdopterProfile ErrorCode = "INVALID_ADOPTER_PROFILE"
	ErrCodeInvalidCandidate      ErrorCode = "INVALID_CANDIDATE"
	ErrCodeInvalidMatch          ErrorCode = "INVALID_MATCH"

	ErrCodeCandidateSearchFailed ErrorCode = "CANDIDATE_SEARCH_FAILED"
	ErrCodeSearchTimeout         ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeRankCacheUnavailable     ErrorCode = "RANK_CACHE_UNAVAILABLE"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeMatchPersistFailed       ErrorCode = "MATCH_PERSIST_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEventPublishFailed     ErrorCode = "EVENT_PUBLISH_FAILED"

	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeBrokerTimeout     ErrorCode = "BROKER_TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError extracts a StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
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

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewInvalidAdopterProfileError rejects malformed adopter input before scoring.
func NewInvalidAdopterProfileError(details string) *StandardError {
	return newError(ErrCodeInvalidAdopterProfile, "Adopter profile failed validation", details, false, nil)
}

// NewInvalidCandidateError rejects a malformed candidate record.
func NewInvalidCandidateError(details string) *StandardError {
	return newError(ErrCodeInvalidCandidate, "Candidate record failed validation", details, false, nil)
}

// NewInvalidMatchError rejects a malformed match handed to the explainer.
func NewInvalidMatchError(details string) *StandardError {
	return newError(ErrCodeInvalidMatch, "Match failed validation", details, false, nil)
}

// NewCandidateSearchFailedError is retryable; callers that must not fail
// degrade to an empty candidate list instead.
func NewCandidateSearchFailedError(index string, err error) *StandardError {
	return newError(ErrCodeCandidateSearchFailed, "Candidate search failed", detailsOf(err), true, err).
		WithMetadata("index", index)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Candidate search timed out", "", true, nil).
		WithMetadata("index", index)
}

func NewRankCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeRankCacheUnavailable, "Rank cache unavailable", detailsOf(err), true, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", detailsOf(err), true, err)
}

func NewMatchPersistFailedError(requestID string, err error) *StandardError {
	return newError(ErrCodeMatchPersistFailed, "Failed to record shown matches", detailsOf(err), true, err).
		WithMetadata("requestId", requestID)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, fmt.Sprintf("Failed to send %s notification", channel), detailsOf(err), true, err)
}

func NewEventPublishFailedError(err error) *StandardError {
	return newError(ErrCodeEventPublishFailed, "Failed to publish matches event", detailsOf(err), true, err)
}

func NewBrokerUnavailableError(err error) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Workflow broker unavailable", detailsOf(err), true, err)
}

func NewBrokerTimeoutError(err error) *StandardError {
	return newError(ErrCodeBrokerTimeout, "Workflow broker request timed out", detailsOf(err), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", detailsOf(err), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidAdopterProfile:    "INVALID_ADOPTER_PROFILE",
	ErrCodeInvalidCandidate:         "INVALID_CANDIDATE",
	ErrCodeInvalidMatch:             "INVALID_MATCH",
	ErrCodeCandidateSearchFailed:    "CANDIDATE_SEARCH_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeRankCacheUnavailable:     "RANK_CACHE_UNAVAILABLE",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeMatchPersistFailed:       "MATCH_PERSIST_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeEventPublishFailed:       "EVENT_PUBLISH_FAILED",
	ErrCodeBrokerUnavailable:        "BROKER_UNAVAILABLE",
	ErrCodeBrokerTimeout:            "BROKER_TIMEOUT",
	ErrCodeInternal:                 "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCandidateSearchFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeMatchPersistFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeEventPublishFailed,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeBrokerTimeout,
		ErrCodeRankCacheUnavailable:
		return 2

	default:
		return 0 // validation and internal errors are not retried
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     GetErrorCategory(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "PERSIST"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "EVENT"):
		return "NOTIFICATION"
	case strings.HasPrefix(codeStr, "BROKER"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
