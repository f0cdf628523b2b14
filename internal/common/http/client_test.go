package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var in map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		switch in["mode"] {
		case "fail":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream unavailable\n"))
		case "garbage":
			_, _ = w.Write([]byte("not json"))
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["mode"].(string)})
		}
	}))
	defer server.Close()

	client := NewClient(2 * time.Second)
	headers := map[string]string{"Authorization": "Bearer k"}
	ctx := context.Background()

	var out struct {
		Echo string `json:"echo"`
	}
	require.NoError(t, client.PostJSON(ctx, server.URL, headers, map[string]string{"mode": "ok"}, &out))
	assert.Equal(t, "ok", out.Echo)

	err := client.PostJSON(ctx, server.URL, headers, map[string]string{"mode": "fail"}, &out)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream unavailable", statusErr.Body)

	err = client.PostJSON(ctx, server.URL, headers, map[string]string{"mode": "garbage"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")

	assert.NoError(t, client.PostJSON(ctx, server.URL, headers, map[string]string{"mode": "ok"}, nil))
}
