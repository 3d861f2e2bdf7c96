// Package config provides centralized configuration management for
// quotafence: built-in defaults, an optional YAML config file, and
// QUOTAFENCE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variable overrides
// (e.g. QUOTAFENCE_SERVER_PORT).
const EnvPrefix = "QUOTAFENCE"

// SetDefaults seeds v with built-in defaults. Duration fields are set as
// strings and converted by the decode hook in Load.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.requests_per_second", 10.0)
	v.SetDefault("server.rate_limit.burst", 20)

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)

	v.SetDefault("quota.namespace", "quota")

	v.SetDefault("throttle.domains.default.requests_per_minute", 60)
	v.SetDefault("throttle.domains.default.retry_delay", "1s")
	v.SetDefault("throttle.domains.default.max_retries", 2)

	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "console")
}

// Load decodes the current viper state into a Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  cfg,
		TagName: "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultStorePath resolves the default libsql database location.
func DefaultStorePath() string {
	if dir, err := os.UserHomeDir(); err == nil && dir != "" {
		return filepath.Join(dir, ".local", "share", "quotafence", "quotafence.db")
	}
	return filepath.Join(".", "quotafence.db")
}

func (c *Config) validate() error {
	for name, p := range c.Quota.Policies {
		if p.MaxRequests <= 0 {
			return fmt.Errorf("quota policy %q: max_requests must be positive", name)
		}
		if p.Window <= 0 {
			return fmt.Errorf("quota policy %q: window must be positive", name)
		}
	}

	for domain, d := range c.Throttle.Domains {
		if d.RequestsPerMinute <= 0 {
			return fmt.Errorf("throttle domain %q: requests_per_minute must be positive", domain)
		}
		if d.RetryDelay < 0 {
			return fmt.Errorf("throttle domain %q: retry_delay must not be negative", domain)
		}
		if d.MaxRetries < 0 {
			return fmt.Errorf("throttle domain %q: max_retries must not be negative", domain)
		}
	}

	return nil
}
