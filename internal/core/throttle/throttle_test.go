package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quotafence/quotafence/internal/core"
)

func TestAllowWithinWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	thr := New(map[string]core.ThrottleConfig{
		"api.example.com": {RequestsPerMinute: 3},
	})
	thr.Clock = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.True(t, thr.Allow("api.example.com"), "request %d should be admitted", i+1)
	}
	require.False(t, thr.Allow("api.example.com"))

	// A denial must not consume the window: still denied, not double-denied
	// into a longer lockout.
	require.False(t, thr.Allow("api.example.com"))
}

func TestWindowReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	thr := New(map[string]core.ThrottleConfig{
		"api.example.com": {RequestsPerMinute: 2},
	})
	thr.Clock = func() time.Time { return now }

	require.True(t, thr.Allow("api.example.com"))
	require.True(t, thr.Allow("api.example.com"))
	require.False(t, thr.Allow("api.example.com"))

	// Exactly 60s after the window opened the window is still live.
	now = now.Add(time.Minute)
	require.False(t, thr.Allow("api.example.com"))

	now = now.Add(time.Second)
	require.True(t, thr.Allow("api.example.com"))
	require.True(t, thr.Allow("api.example.com"))
	require.False(t, thr.Allow("api.example.com"))
}

func TestDomainsAreIndependent(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	thr := New(map[string]core.ThrottleConfig{
		"a.example.com": {RequestsPerMinute: 1},
		"b.example.com": {RequestsPerMinute: 1},
	})
	thr.Clock = func() time.Time { return now }

	require.True(t, thr.Allow("a.example.com"))
	require.False(t, thr.Allow("a.example.com"))
	require.True(t, thr.Allow("b.example.com"))
}

func TestUnknownDomainFallsBackToDefault(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	thr := New(map[string]core.ThrottleConfig{
		DefaultDomain: {RequestsPerMinute: 1, MaxRetries: 5},
	})
	thr.Clock = func() time.Time { return now }

	require.Equal(t, 5, thr.Config("unconfigured.example.com").MaxRetries)
	require.True(t, thr.Allow("unconfigured.example.com"))
	require.False(t, thr.Allow("unconfigured.example.com"))
}

func TestBuiltinDefaultConfig(t *testing.T) {
	thr := New(nil)
	require.Equal(t, 60, thr.Config("anything.example.com").RequestsPerMinute)
	require.True(t, thr.Allow("anything.example.com"))
}

func TestSetConfigsKeepsWindowState(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	thr := New(map[string]core.ThrottleConfig{
		"api.example.com": {RequestsPerMinute: 5},
	})
	thr.Clock = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.True(t, thr.Allow("api.example.com"))
	}

	// Tightening the limit below the in-window count takes effect
	// immediately because state is preserved.
	thr.SetConfigs(map[string]core.ThrottleConfig{
		"api.example.com": {RequestsPerMinute: 3},
	})
	require.False(t, thr.Allow("api.example.com"))
}

func TestInstancesDoNotShareState(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	configs := map[string]core.ThrottleConfig{
		"api.example.com": {RequestsPerMinute: 1},
	}
	a := New(configs)
	a.Clock = func() time.Time { return now }
	b := New(configs)
	b.Clock = func() time.Time { return now }

	require.True(t, a.Allow("api.example.com"))
	require.False(t, a.Allow("api.example.com"))
	require.True(t, b.Allow("api.example.com"))
}

func TestNilThrottleAdmitsEverything(t *testing.T) {
	var thr *Throttle
	require.True(t, thr.Allow("api.example.com"))
	require.Equal(t, 60, thr.Config("api.example.com").RequestsPerMinute)
}
