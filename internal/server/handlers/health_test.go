package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	err error
}

func (c stubChecker) CheckHealth(ctx context.Context) error {
	return c.err
}

func TestHealthHandlerHealthy(t *testing.T) {
	handler := &HealthHandler{
		Version: "test",
		Checkers: map[string]HealthChecker{
			"store": stubChecker{},
		},
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
	require.Equal(t, "test", resp.Version)
	require.Equal(t, "healthy", resp.Checks["store"])
}

func TestHealthHandlerUnhealthy(t *testing.T) {
	handler := &HealthHandler{
		Version: "test",
		Checkers: map[string]HealthChecker{
			"store": stubChecker{err: errors.New("store unreachable")},
		},
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "unhealthy", resp.Status)
	require.Equal(t, "unhealthy", resp.Checks["store"])
}
