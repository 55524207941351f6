// Package config provides configuration loading, defaults, and validation
// for the riskengine service.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "RISKD"

// newViper builds a pre-configured viper instance with the service standard
// settings: YAML file type, RISKD_ env prefix, automatic env binding, and a
// key replacer that maps "." → "_" so that nested keys like "cache.ttl"
// resolve to "RISKD_CACHE_TTL".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Registering the scalar keys makes viper consider them "known", which
	// is required for AutomaticEnv to surface env-only overrides through
	// Unmarshal.  The zero values here are replaced by ApplyDefaults.
	for _, key := range []string{
		"server.port", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
		"log.level", "log.format",
		"cache.backend", "cache.ttl", "cache.key_prefix",
		"cache.redis.addr", "cache.redis.password", "cache.redis.db",
		"model.classifier_path", "model.anomaly_path",
		"model.classifier_weight", "model.anomaly_weight",
		"model.ok_threshold", "model.block_threshold",
		"rules.list_precedence", "rules.message_keyword_weight",
		"probe.enabled", "probe.total_deadline", "probe.attempt_timeout", "probe.max_retries",
		"events.enabled", "events.topic",
		"metrics.enabled",
	} {
		v.SetDefault(key, nil)
	}
	return v
}

// Load reads the YAML file at configPath, merges any RISKD_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from RISKD_* environment variables
// with no config file, the preferred strategy for containerised deployments.
//
// Naming convention: RISKD_<SECTION>_<FIELD>, e.g. RISKD_SERVER_PORT,
// RISKD_CACHE_REDIS_ADDR.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  Callers are
// responsible for applying only the safe subset of changes at runtime (log
// level, rule lists); model and cache topology changes require a restart.
// Non-blocking; the watch goroutine is managed by viper.  A change that
// fails to parse or validate is dropped without invoking onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}
