package fetch

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryAfterHeader(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{}}
		delay, raw := retryAfterHeader(resp)
		require.Zero(t, delay)
		require.Empty(t, raw)
	})

	t.Run("delta seconds", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"30"}}}
		delay, raw := retryAfterHeader(resp)
		require.Equal(t, 30*time.Second, delay)
		require.Equal(t, "30", raw)
	})

	t.Run("http date", func(t *testing.T) {
		future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
		resp := &http.Response{Header: http.Header{"Retry-After": []string{future}}}
		delay, raw := retryAfterHeader(resp)
		require.Equal(t, future, raw)
		require.Greater(t, delay, 80*time.Second)
		require.LessOrEqual(t, delay, 90*time.Second)
	})

	t.Run("garbage", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"soon"}}}
		delay, raw := retryAfterHeader(resp)
		require.Zero(t, delay)
		require.Equal(t, "soon", raw)
	})

	t.Run("nil response", func(t *testing.T) {
		delay, raw := retryAfterHeader(nil)
		require.Zero(t, delay)
		require.Empty(t, raw)
	})
}
