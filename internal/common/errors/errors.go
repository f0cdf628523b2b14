// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Quiz and matching errors
const (
	ErrCodeAnswerValidationFailed ErrorCode = "ANSWER_VALIDATION_FAILED"
	ErrCodeSessionNotFound        ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionCompleted       ErrorCode = "SESSION_COMPLETED"
	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"
	ErrCodeQuizPersistenceFailed  ErrorCode = "QUIZ_PERSISTENCE_FAILED"
	ErrCodeQuizCompletionFailed   ErrorCode = "QUIZ_COMPLETION_FAILED"
	ErrCodeBrokerMatchingFailed   ErrorCode = "BROKER_MATCHING_FAILED"
)

// Infrastructure errors
const (
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeCacheOperationFailed          ErrorCode = "CACHE_OPERATION_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeNotificationSendFailed        ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInvalidInput                  ErrorCode = "INVALID_INPUT"
)

// Generic codes
const (
	ErrCodeBusinessRuleViolation ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService       ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout               ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound      ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication        ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
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

// NewAnswerValidationFailedError rejects a submission; the session is unchanged.
func NewAnswerValidationFailedError(details string) *StandardError {
	return newError(ErrCodeAnswerValidationFailed, "Answer does not fit the current question", details, false)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Quiz session not found", fmt.Sprintf("sessionId: %s", sessionID), false)
}

func NewSessionCompletedError(sessionID string) *StandardError {
	return newError(ErrCodeSessionCompleted, "Quiz session is already completed", fmt.Sprintf("sessionId: %s", sessionID), false)
}

func NewUserNotFoundError(userID string) *StandardError {
	return newError(ErrCodeUserNotFound, "User not found", fmt.Sprintf("userId: %s", userID), false)
}

// NewQuizPersistenceFailedError creates a retryable write/read failure for quiz state.
func NewQuizPersistenceFailedError(err error) *StandardError {
	return newError(ErrCodeQuizPersistenceFailed, "Quiz state could not be persisted", err.Error(), true)
}

// NewQuizCompletionFailedError creates a retryable failure of the completion cascade.
func NewQuizCompletionFailedError(err error) *StandardError {
	return newError(ErrCodeQuizCompletionFailed, "Quiz completion failed", err.Error(), true)
}

func NewBrokerMatchingFailedError(err error) *StandardError {
	return newError(ErrCodeBrokerMatchingFailed, "Broker matching failed", err.Error(), true)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewCacheOperationFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeCacheOperationFailed, "Cache operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRuleViolation, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. BPMN Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeAnswerValidationFailed:        "ANSWER_VALIDATION_FAILED",
	ErrCodeSessionNotFound:               "SESSION_NOT_FOUND",
	ErrCodeSessionCompleted:              "SESSION_COMPLETED",
	ErrCodeUserNotFound:                  "USER_NOT_FOUND",
	ErrCodeQuizPersistenceFailed:         "QUIZ_PERSISTENCE_FAILED",
	ErrCodeQuizCompletionFailed:          "QUIZ_COMPLETION_FAILED",
	ErrCodeBrokerMatchingFailed:          "BROKER_MATCHING_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeCacheOperationFailed:          "CACHE_OPERATION_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
	ErrCodeInvalidInput:                  "INVALID_INPUT",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeQuizPersistenceFailed,
		ErrCodeQuizCompletionFailed,
		ErrCodeBrokerMatchingFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeCacheOperationFailed,
		ErrCodeTimeout:
		return 2

	default:
		return 0 // business errors
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "QUIZ") || strings.Contains(codeStr, "ANSWER"):
		return "QUIZ"
	case strings.Contains(codeStr, "MATCHING"):
		return "MATCHING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_EXECUTION"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "USER") || strings.Contains(codeStr, "AUTHENTICATION"):
		return "AUTH"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
