package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quotafence/quotafence/internal/config"
	"github.com/quotafence/quotafence/internal/core"
	"github.com/quotafence/quotafence/internal/core/fetch"
	"github.com/quotafence/quotafence/internal/core/kv"
	"github.com/quotafence/quotafence/internal/core/quota"
	"github.com/quotafence/quotafence/internal/core/throttle"
	"github.com/quotafence/quotafence/internal/server/handlers"
)

type stubTransport struct {
	status int
	body   string
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: s.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(s.body)),
	}, nil
}

func newTestServer(t *testing.T, deps handlers.Deps) *Server {
	t.Helper()
	return New(config.ServerConfig{}, zap.NewNop(), deps)
}

func defaultDeps() handlers.Deps {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := kv.NewMemory()
	store.Clock = func() time.Time { return now }

	tracker := &quota.Tracker{
		Store: store,
		Policies: map[string]core.QuotaPolicy{
			"report": {MaxRequests: 2, Window: time.Hour},
		},
	}

	fetcher := &fetch.Client{
		Throttle: throttle.New(nil),
		HTTP:     &http.Client{Transport: &stubTransport{status: 200, body: `{"ok":true}`}},
	}

	return handlers.Deps{
		Tracker:   tracker,
		Fetcher:   fetcher,
		Version:   "test",
		Commit:    "abc123",
		BuildDate: "2026-01-01",
	}
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestQuotaCheckEndpoint(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/quota/report/user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.QuotaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "report", resp.Policy)
	require.Equal(t, "user-1", resp.Subject)
	require.True(t, resp.Allowed)
	require.Equal(t, 2, resp.Remaining)
}

func TestQuotaConsumeEndpoint(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/quota/report/user-1/consume", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.QuotaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Allowed)
	require.Equal(t, 1, resp.Remaining)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/quota/report/user-1/consume", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Allowed)
	require.Equal(t, 0, resp.Remaining)
}

func TestQuotaUnknownPolicy(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/quota/missing/user-1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "NOT_FOUND", resp.Error.Code)
	require.Contains(t, resp.Error.Message, "unknown quota policy")
	require.NotEmpty(t, resp.Error.RequestID)
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("store unreachable")
}

func (failingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("store unreachable")
}

func (failingStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, errors.New("store unreachable")
}

func TestQuotaStoreFailureFailsClosed(t *testing.T) {
	deps := defaultDeps()
	deps.Tracker = &quota.Tracker{
		Store: failingStore{},
		Policies: map[string]core.QuotaPolicy{
			"report": {MaxRequests: 2, Window: time.Hour},
		},
	}
	srv := newTestServer(t, deps)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/quota/report/user-1", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "STORE_UNAVAILABLE", resp.Error.Code)
}

func TestFetchEndpoint(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/fetch", `{"url":"https://api.example.com/v1/check"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.FetchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.True(t, result.OK)
	require.Equal(t, 200, result.Status)
	require.JSONEq(t, `{"ok":true}`, string(result.Data))
}

func TestFetchEndpointRequiresURL(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/fetch", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestFetchEndpointRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/fetch", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundEnvelope(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "NOT_FOUND", resp.Error.Code)
	require.NotEmpty(t, resp.Error.RequestID)
}

func TestMethodNotAllowedEnvelope(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodPost, "/health", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "METHOD_NOT_ALLOWED", resp.Error.Code)
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doRequest(t, srv, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.VersionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "test", resp.Version)
	require.Equal(t, "abc123", resp.Commit)
	require.NotEmpty(t, resp.GoVersion)
}
