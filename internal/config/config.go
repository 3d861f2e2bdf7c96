package config

import (
	"time"

	"github.com/quotafence/quotafence/internal/core"
)

// Config is the complete application configuration. Values are seeded from
// built-in defaults, then an optional YAML config file, then QUOTAFENCE_*
// environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP facade configuration.
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds inbound traffic to the facade per client address.
// This is a smooth token bucket and is unrelated to the outbound domain
// throttle.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// StoreConfig selects and configures the persistent counter store.
type StoreConfig struct {
	// Driver is "libsql" or "redis".
	Driver    string      `mapstructure:"driver"`
	Path      string      `mapstructure:"path"`
	URL       string      `mapstructure:"url"`
	AuthToken string      `mapstructure:"auth_token"`
	Redis     RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the Redis store backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QuotaConfig names the quota policies and the key namespace.
type QuotaConfig struct {
	Namespace string                  `mapstructure:"namespace"`
	Policies  map[string]PolicyConfig `mapstructure:"policies"`
}

// PolicyConfig is one named quota policy.
type PolicyConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// ThrottleConfig maps destination domains to outbound limits. The "default"
// entry applies to unlisted domains.
type ThrottleConfig struct {
	Domains map[string]DomainConfig `mapstructure:"domains"`
}

// DomainConfig bounds outbound traffic to one domain.
type DomainConfig struct {
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// FetchConfig customizes the outbound HTTP client.
type FetchConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoggingConfig controls log level and output profile.
// Profile is "console" for human-readable CLI output or "json" for the
// structured server profile.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}

// Policies converts the configured policy table to core types.
func (q QuotaConfig) CorePolicies() map[string]core.QuotaPolicy {
	policies := make(map[string]core.QuotaPolicy, len(q.Policies))
	for name, p := range q.Policies {
		policies[name] = core.QuotaPolicy{MaxRequests: p.MaxRequests, Window: p.Window}
	}
	return policies
}

// CoreConfigs converts the configured throttle table to core types.
func (t ThrottleConfig) CoreConfigs() map[string]core.ThrottleConfig {
	configs := make(map[string]core.ThrottleConfig, len(t.Domains))
	for domain, d := range t.Domains {
		configs[domain] = core.ThrottleConfig{
			RequestsPerMinute: d.RequestsPerMinute,
			RetryDelay:        d.RetryDelay,
			MaxRetries:        d.MaxRetries,
		}
	}
	return configs
}
