package submit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/clawvault/internal/logging"
	"github.com/openclaw/clawvault/internal/stores"
)

func newTestServer(t *testing.T) (*Server, *stores.MockStore, *httptest.Server) {
	t.Helper()
	store := stores.NewMockStore()
	server, err := NewServer(DefaultServerConfig(), logging.New(false, true), store)
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return server, store, ts
}

func postSubmission(t *testing.T, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/submit", strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSubmitStoresSecret(t *testing.T) {
	server, store, ts := newTestServer(t)

	resp := postSubmission(t, ts.URL, server.Token(),
		`{"name": "OPENCLAW_ANTHROPIC_MAIN_KEY", "value": "sk-ant-submitted"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := store.Get(context.Background(), "OPENCLAW_ANTHROPIC_MAIN_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-submitted", got)
}

func TestSubmitTokenIsSingleUse(t *testing.T) {
	server, store, ts := newTestServer(t)
	token := server.Token()

	first := postSubmission(t, ts.URL, token, `{"name": "OPENCLAW_KEY_ONE", "value": "v1"}`)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := postSubmission(t, ts.URL, token, `{"name": "OPENCLAW_KEY_TWO", "value": "v2"}`)
	assert.Equal(t, http.StatusForbidden, second.StatusCode)
	assert.Equal(t, 1, store.Len())
}

func TestSubmitRejectsBadToken(t *testing.T) {
	_, store, ts := newTestServer(t)

	resp := postSubmission(t, ts.URL, "wrong-token", `{"name": "OPENCLAW_KEY", "value": "v"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	missing := postSubmission(t, ts.URL, "", `{"name": "OPENCLAW_KEY", "value": "v"}`)
	assert.Equal(t, http.StatusForbidden, missing.StatusCode)
	assert.Equal(t, 0, store.Len())
}

func TestSubmitValidatesInput(t *testing.T) {
	server, store, ts := newTestServer(t)
	token := server.Token()

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{"name": `},
		{"lowercase name", `{"name": "openclaw_key", "value": "v"}`},
		{"empty value", `{"name": "OPENCLAW_KEY", "value": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postSubmission(t, ts.URL, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	// Failed submissions release the token; a valid retry still works
	resp := postSubmission(t, ts.URL, token, `{"name": "OPENCLAW_KEY", "value": "v"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, store.Len())
}

func TestSubmitStorageFailureReleasesToken(t *testing.T) {
	server, store, ts := newTestServer(t)
	store.FailSet = assert.AnError

	resp := postSubmission(t, ts.URL, server.Token(),
		`{"name": "OPENCLAW_KEY", "value": "v"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	store.FailSet = nil
	retry := postSubmission(t, ts.URL, server.Token(),
		`{"name": "OPENCLAW_KEY", "value": "v"}`)
	assert.Equal(t, http.StatusOK, retry.StatusCode)
}

func TestSubmitMethodNotAllowed(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/submit")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	_, _, ts := newTestServer(t)

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	metrics, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}
