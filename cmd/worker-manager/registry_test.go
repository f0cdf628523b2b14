package main

import (
	"testing"

	"broker-match-workers/pkg/registry"

	rb "broker-match-workers/internal/workers/matching/rank-brokers"
	gqi "broker-match-workers/internal/workers/quiz/generate-quiz-insights"
	rqs "broker-match-workers/internal/workers/quiz/restart-quiz-session"
	sqs "broker-match-workers/internal/workers/quiz/start-quiz-session"
	sqr "broker-match-workers/internal/workers/quiz/submit-quiz-response"

	"github.com/stretchr/testify/require"
)

func TestActivityRegistryCoversWorkers(t *testing.T) {
	reg, err := registry.LoadRegistry("../../configs/activities.json")
	require.NoError(t, err)
	require.NoError(t, reg.Validate([]string{sqs.TaskType, sqr.TaskType, rqs.TaskType, gqi.TaskType, rb.TaskType}))
}
