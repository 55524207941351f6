// Package config defines all configuration structures for the riskengine
// service.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds Redis connection parameters for the redis cache backend.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig controls the result cache.  The TTL applies uniformly to every
// verdict: a cached BLOCK expires exactly as a cached OK does.
type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	Backend string `mapstructure:"backend"`

	// TTL is the uniform time-to-live for assessment entries.
	TTL time.Duration `mapstructure:"ttl"`

	// KeyPrefix namespaces cache keys in shared backends.
	KeyPrefix string `mapstructure:"key_prefix"`

	Redis RedisConfig `mapstructure:"redis"`
}

// ModelConfig locates the static model artifacts and carries the score
// combination parameters.  Artifacts are loaded once at startup and treated
// as read-only for the process lifetime.
type ModelConfig struct {
	// ClassifierPath points at the JSON classifier artifact.
	ClassifierPath string `mapstructure:"classifier_path"`

	// AnomalyPath points at the JSON anomaly-detector artifact.
	AnomalyPath string `mapstructure:"anomaly_path"`

	// ClassifierWeight and AnomalyWeight form the fixed weighted sum
	// combining the two Stage 1 signals; they must sum to 1.
	ClassifierWeight float64 `mapstructure:"classifier_weight"`
	AnomalyWeight    float64 `mapstructure:"anomaly_weight"`

	// OKThreshold and BlockThreshold are the two decision cut points:
	// score <= OKThreshold → OK, score >= BlockThreshold → BLOCK.
	OKThreshold    float64 `mapstructure:"ok_threshold"`
	BlockThreshold float64 `mapstructure:"block_threshold"`
}

// ListPrecedence values for RulesConfig.
const (
	PrecedenceBlacklist = "blacklist"
	PrecedenceWhitelist = "whitelist"
)

// RulesConfig carries the rule tables applied before and alongside the
// statistical models.  All lists are validated at startup and treated as
// immutable lookup tables thereafter.
type RulesConfig struct {
	// TrustedDomains short-circuit a LINK straight to OK.
	TrustedDomains []string `mapstructure:"trusted_domains"`

	// BlacklistPatterns are anchored regular expressions matched against the
	// host; a match short-circuits straight to BLOCK.
	BlacklistPatterns []string `mapstructure:"blacklist_patterns"`

	// DomainKeywords inside a non-trusted host also short-circuit to BLOCK.
	DomainKeywords []string `mapstructure:"domain_keywords"`

	// ListPrecedence resolves a value matching both lists: "blacklist"
	// (default, fail toward suspicion) or "whitelist".
	ListPrecedence string `mapstructure:"list_precedence"`

	// MessageKeywords flag suspicious phrases in MESSAGE artifacts; each hit
	// contributes MessageKeywordWeight to the message score.
	MessageKeywords      []string `mapstructure:"message_keywords"`
	MessageKeywordWeight float64  `mapstructure:"message_keyword_weight"`

	// VPAProviders is the allowlist of known payment-provider handles.
	VPAProviders []string `mapstructure:"vpa_providers"`
}

// ProbeConfig controls the Stage 2 dynamic probe adapter.
type ProbeConfig struct {
	// Enabled switches the probe on.  When off, Stage 2 reports Unsupported
	// and the engine degrades to Stage-1-only analysis.
	Enabled bool `mapstructure:"enabled"`

	// TotalDeadline bounds the whole probe including retries.
	TotalDeadline time.Duration `mapstructure:"total_deadline"`

	// AttemptTimeout bounds the first attempt; each retry gets a shorter
	// slice of the remaining deadline.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int `mapstructure:"max_retries"`

	// IndicatorWeights maps behavioural indicator names to their score
	// contribution, so indicator weighting can evolve without touching the
	// merge algorithm.
	IndicatorWeights map[string]float64 `mapstructure:"indicator_weights"`
}

// EventsConfig controls the kafka assessment-event stream.
type EventsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the root configuration for the riskengine service.
type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	Log     logging.LogConfig `mapstructure:"log"`
	Cache   CacheConfig       `mapstructure:"cache"`
	Model   ModelConfig       `mapstructure:"model"`
	Rules   RulesConfig       `mapstructure:"rules"`
	Probe   ProbeConfig       `mapstructure:"probe"`
	Events  EventsConfig      `mapstructure:"events"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
}

const weightSumTolerance = 1e-9

// Validate checks the configuration for internal consistency.  It must be
// called after ApplyDefaults and before any component consumes the config.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not one of memory, redis", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}

	if math.Abs(c.Model.ClassifierWeight+c.Model.AnomalyWeight-1.0) > weightSumTolerance {
		return fmt.Errorf("model weights must sum to 1, got %v + %v",
			c.Model.ClassifierWeight, c.Model.AnomalyWeight)
	}
	if c.Model.OKThreshold < 0 || c.Model.BlockThreshold > 1 || c.Model.OKThreshold >= c.Model.BlockThreshold {
		return fmt.Errorf("model thresholds must satisfy 0 <= ok < block <= 1, got ok=%v block=%v",
			c.Model.OKThreshold, c.Model.BlockThreshold)
	}

	switch c.Rules.ListPrecedence {
	case PrecedenceBlacklist, PrecedenceWhitelist:
	default:
		return fmt.Errorf("rules.list_precedence %q is not one of %s, %s",
			c.Rules.ListPrecedence, PrecedenceBlacklist, PrecedenceWhitelist)
	}
	for _, p := range c.Rules.BlacklistPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("rules.blacklist_patterns entry %q: %w", p, err)
		}
	}
	if c.Rules.MessageKeywordWeight < 0 || c.Rules.MessageKeywordWeight > 1 {
		return fmt.Errorf("rules.message_keyword_weight must be in [0,1], got %v", c.Rules.MessageKeywordWeight)
	}

	if c.Probe.Enabled {
		if c.Probe.TotalDeadline <= 0 {
			return fmt.Errorf("probe.total_deadline must be positive, got %s", c.Probe.TotalDeadline)
		}
		if c.Probe.AttemptTimeout <= 0 || c.Probe.AttemptTimeout > c.Probe.TotalDeadline {
			return fmt.Errorf("probe.attempt_timeout must be in (0, total_deadline], got %s", c.Probe.AttemptTimeout)
		}
		if c.Probe.MaxRetries < 0 {
			return fmt.Errorf("probe.max_retries must be >= 0, got %d", c.Probe.MaxRetries)
		}
	}
	for name, w := range c.Probe.IndicatorWeights {
		if w < 0 || w > 1 {
			return fmt.Errorf("probe.indicator_weights[%s] must be in [0,1], got %v", name, w)
		}
	}

	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("events.brokers is required when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("events.topic is required when events are enabled")
		}
	}

	return nil
}
