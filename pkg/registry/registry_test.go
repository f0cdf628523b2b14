package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryJSON = `{
  "version": "1.0.0",
  "activities": [
    {"id": "start-quiz-session", "taskType": "start-quiz-session", "implementationStatus": "implemented", "retries": 3},
    {"id": "rank-brokers", "taskType": "rank-brokers", "implementationStatus": "implemented", "retries": 3},
    {"id": "schedule-intro-call", "taskType": "schedule-intro-call", "implementationStatus": "planned"}
  ]
}`

func writeRegistry(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, registryJSON))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)
	require.Len(t, reg.Activities, 3)

	a, ok := reg.Find("rank-brokers")
	require.True(t, ok)
	assert.Equal(t, 3, a.Retries)

	_, ok = reg.Find("missing")
	assert.False(t, ok)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry("/non/existent/path/registry.json")
	assert.Error(t, err)

	_, err = LoadRegistry(writeRegistry(t, "{broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse registry")
}

func TestValidate(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, registryJSON))
	require.NoError(t, err)

	tests := []struct {
		name    string
		started []string
		errMsg  string
	}{
		{name: "all implemented running", started: []string{"start-quiz-session", "rank-brokers"}},
		{name: "implemented activity not running", started: []string{"start-quiz-session"}, errMsg: "rank-brokers has no running worker"},
		{name: "unregistered worker", started: []string{"start-quiz-session", "rank-brokers", "rogue"}, errMsg: "rogue is not registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Validate(tt.started)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
