package workers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	stderrors "broker-match-workers/internal/common/errors"
	"broker-match-workers/internal/common/validation"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToStandardError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      stderrors.ErrorCode
		retryable bool
	}{
		{name: "invalid answer", err: fmt.Errorf("%w: empty text answer", quiz.ErrInvalidAnswer), code: stderrors.ErrCodeAnswerValidationFailed},
		{name: "missing session", err: fmt.Errorf("%w: s-1", quiz.ErrSessionNotFound), code: stderrors.ErrCodeSessionNotFound},
		{name: "completed session", err: quiz.ErrSessionCompleted, code: stderrors.ErrCodeSessionCompleted},
		{name: "unknown user", err: quiz.ErrUserNotFound, code: stderrors.ErrCodeUserNotFound},
		{
			name:      "completion wins over persistence",
			err:       errors.Join(quiz.ErrCompletionFailed, quiz.ErrPersistenceFailed),
			code:      stderrors.ErrCodeQuizCompletionFailed,
			retryable: true,
		},
		{name: "persistence", err: fmt.Errorf("%w: save session", quiz.ErrPersistenceFailed), code: stderrors.ErrCodeQuizPersistenceFailed, retryable: true},
		{name: "search", err: fmt.Errorf("%w: 503", repository.ErrSearchFailed), code: stderrors.ErrCodeSearchQueryFailed, retryable: true},
		{name: "query", err: fmt.Errorf("%w: timeout", repository.ErrQueryFailed), code: stderrors.ErrCodeQueryExecutionFailed, retryable: true},
		{name: "deadline", err: fmt.Errorf("rank: %w", context.DeadlineExceeded), code: stderrors.ErrCodeTimeout, retryable: true},
		{name: "already standard", err: stderrors.NewBrokerMatchingFailedError(errors.New("x")), code: stderrors.ErrCodeBrokerMatchingFailed, retryable: true},
		{name: "anything else", err: errors.New("boom"), code: stderrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := ToStandardError(tt.err, "ref-1")
			require.NotNil(t, stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}

	assert.Nil(t, ToStandardError(nil, ""))
	assert.Contains(t, ToStandardError(quiz.ErrSessionNotFound, "s-9").Details, "s-9")
}

func TestDecodeVariables(t *testing.T) {
	schema := validation.Object(map[string]interface{}{
		"userId": validation.NonEmptyString(),
	}, "userId")

	job := func(vars string) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: vars}}
	}

	vars, err := DecodeVariables(job(`{"userId":"u-1","extra":true}`), schema)
	require.NoError(t, err)
	assert.Equal(t, "u-1", vars["userId"])

	_, err = DecodeVariables(job(`{"userId":""}`), schema)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeInvalidInput, stdErr.Code)

	_, err = DecodeVariables(job(`not json`), schema)
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeInvalidInput, stdErr.Code)
}
