package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    port: 5432
    database: brokers
    user: matcher
  redis:
    address: localhost:6379
workers:
  rank-brokers:
    enabled: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "broker-match-workers", cfg.App.Name)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, BrokerSourcePostgres, cfg.Matching.BrokerSource)
	assert.Equal(t, "brokers", cfg.Matching.BrokerIndex)
	assert.Equal(t, 5, cfg.Quiz.CompletionMatches)
	assert.Equal(t, time.Hour, GetDuration(cfg.Quiz.SessionTTL))
	assert.Equal(t, 24*time.Hour, GetDuration(cfg.Quiz.CompletedTTL))
	assert.Equal(t, 10, cfg.Matching.DefaultTopN)
	assert.Equal(t, 5*time.Minute, GetDuration(cfg.Matching.BrokerCacheTTL))
	assert.Equal(t, 1.0, cfg.Observability.TraceSampleRatio)
	assert.Equal(t, "broker-match-workers", cfg.Observability.ServiceName)

	worker := cfg.Workers["rank-brokers"]
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
	assert.Equal(t, 3, worker.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_GENAI_URL", "http://genai.local")
	t.Setenv("GENAI_API_KEY", "secret-key")

	body := minimalYAML + `
apis:
  genai:
    enabled: true
    base_url: ${TEST_GENAI_URL}
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, "http://genai.local", cfg.APIs.GenAI.BaseURL)
	assert.Equal(t, "secret-key", cfg.APIs.GenAI.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "missing broker address",
			body:   "database:\n  postgres:\n    host: h\n",
			errMsg: "camunda.broker_address is required",
		},
		{
			name: "elasticsearch source without address",
			body: minimalYAML + `
matching:
  broker_source: elasticsearch
`,
			errMsg: "database.elasticsearch.addresses or url is required for broker_source=elasticsearch",
		},
		{
			name: "unknown broker source",
			body: minimalYAML + `
matching:
  broker_source: mongo
`,
			errMsg: "matching.broker_source must be postgres or elasticsearch",
		},
		{
			name: "sns without topic",
			body: minimalYAML + `
notifications:
  sns:
    enabled: true
`,
			errMsg: "notifications.sns.topic_arn is required when enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"submit-quiz-response": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.Equal(t, 2, GetWorkerConfig(cfg, "submit-quiz-response").MaxJobsActive)
	assert.False(t, IsWorkerEnabled(cfg, "submit-quiz-response"))

	fallback := GetWorkerConfig(cfg, "rank-brokers")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 5, fallback.MaxJobsActive)
	assert.True(t, IsWorkerEnabled(cfg, "rank-brokers"))
}
