// Package throttle provides process-local admission control for outbound
// requests, keyed by destination domain.
//
// The gate is a fixed 60-second window, not a token bucket: the counter
// resets entirely at the window boundary, so bursts of up to twice the
// nominal rate are possible across a boundary. State lives only in this
// process; it is traffic shaping, not a distributed quota.
package throttle

import (
	"sync"
	"time"

	"github.com/quotafence/quotafence/internal/core"
)

// DefaultDomain keys the fallback config used for unknown destinations and
// for URLs whose host cannot be determined.
const DefaultDomain = "default"

const window = time.Minute

// Throttle admits or denies requests per destination domain. Each instance
// owns its own state map, so independent configurations can coexist in one
// process.
type Throttle struct {
	Clock func() time.Time

	mu      sync.Mutex
	configs map[string]core.ThrottleConfig
	state   map[string]*domainState
}

type domainState struct {
	windowStart time.Time
	count       int
}

// New returns a throttle with the given per-domain configs. The map may
// carry a DefaultDomain entry to override the built-in fallback.
func New(configs map[string]core.ThrottleConfig) *Throttle {
	return &Throttle{
		configs: configs,
		state:   make(map[string]*domainState),
	}
}

// Allow reports whether one more request to domain is admitted right now.
// A denial does not mutate state.
func (t *Throttle) Allow(domain string) bool {
	if t == nil {
		return true
	}

	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	cfg := t.configLocked(domain)

	if t.state == nil {
		t.state = make(map[string]*domainState)
	}

	st, ok := t.state[domain]
	if !ok {
		t.state[domain] = &domainState{windowStart: now, count: 1}
		return true
	}

	if now.Sub(st.windowStart) > window {
		st.windowStart = now
		st.count = 1
		return true
	}

	if st.count >= cfg.RequestsPerMinute {
		return false
	}

	st.count++
	return true
}

// Config resolves the throttle config for domain, falling back to the
// DefaultDomain entry and then to a built-in default.
func (t *Throttle) Config(domain string) core.ThrottleConfig {
	if t == nil {
		return core.ThrottleConfig{RequestsPerMinute: 60}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.configLocked(domain)
}

// SetConfigs swaps the per-domain config table, leaving window state alone.
// Used by config hot-reload.
func (t *Throttle) SetConfigs(configs map[string]core.ThrottleConfig) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.configs = configs
}

func (t *Throttle) configLocked(domain string) core.ThrottleConfig {
	if cfg, ok := t.configs[domain]; ok {
		return cfg
	}
	if cfg, ok := t.configs[DefaultDomain]; ok {
		return cfg
	}
	return core.ThrottleConfig{RequestsPerMinute: 60}
}

func (t *Throttle) now() time.Time {
	if t != nil && t.Clock != nil {
		return t.Clock()
	}
	return time.Now().UTC()
}
