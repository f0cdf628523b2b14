package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedCode    string
		expectedRetries int
	}{
		{
			name:            "business error is thrown without retries",
			err:             NewSessionNotFoundError("s-1"),
			expectedCode:    "SESSION_NOT_FOUND",
			expectedRetries: 0,
		},
		{
			name:            "persistence failure retries",
			err:             NewQuizPersistenceFailedError(fmt.Errorf("redis down")),
			expectedCode:    "QUIZ_PERSISTENCE_FAILED",
			expectedRetries: 3,
		},
		{
			name:            "cache failure retries twice",
			err:             NewCacheOperationFailedError("get", fmt.Errorf("timeout")),
			expectedCode:    "CACHE_OPERATION_FAILED",
			expectedRetries: 2,
		},
		{
			name:            "unmapped code falls back to itself",
			err:             NewBusinessRuleError("nope", "details"),
			expectedCode:    "BUSINESS_RULE_VIOLATION",
			expectedRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.expectedCode, bpmn.Code)
			assert.Equal(t, tt.expectedRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.expectedCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.NotEmpty(t, vars["timestamp"])
		})
	}
}

func TestNonRetryableOverridesRetryCount(t *testing.T) {
	err := NewQueryExecutionFailedError("list_responses", fmt.Errorf("boom"))
	err.Retryable = false
	assert.Zero(t, ConvertToBPMNError(err).Retries)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "QUIZ", GetErrorCategory(ErrCodeSessionCompleted))
	assert.Equal(t, "QUIZ", GetErrorCategory(ErrCodeAnswerValidationFailed))
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeBrokerMatchingFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheOperationFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeUserNotFound))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeQuizCompletionFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeUserNotFound))
}

func TestNormalizeError(t *testing.T) {
	h := NewErrorHandler(nil)

	wrapped := fmt.Errorf("execute: %w", NewUserNotFoundError("u-1"))
	require.Equal(t, ErrCodeUserNotFound, h.normalizeError(wrapped).Code)

	plain := h.normalizeError(fmt.Errorf("unexpected"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "unexpected", plain.Details)
	assert.False(t, plain.Retryable)
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, int32(2), remainingRetries(3, 3))
	assert.Equal(t, int32(3), remainingRetries(10, 3))
	assert.Equal(t, int32(0), remainingRetries(1, 3))
	assert.Equal(t, int32(0), remainingRetries(0, 3))
}
