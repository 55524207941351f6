package config

import "time"

// Default value constants.
const (
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCacheBackend = "memory"
	DefaultCacheTTL     = 24 * time.Hour
	DefaultKeyPrefix    = "riskd:"

	DefaultRedisAddr = "localhost:6379"

	DefaultClassifierPath = "configs/models/classifier.json"
	DefaultAnomalyPath    = "configs/models/anomaly.json"

	DefaultClassifierWeight = 0.7
	DefaultAnomalyWeight    = 0.3
	DefaultOKThreshold      = 0.3
	DefaultBlockThreshold   = 0.75

	DefaultProbeTotalDeadline  = 30 * time.Second
	DefaultProbeAttemptTimeout = 15 * time.Second
	DefaultProbeMaxRetries     = 2

	DefaultMessageKeywordWeight = 0.15

	DefaultEventsTopic = "risk.assessments"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// defaultTrustedDomains short-circuit Stage 1 straight to OK.  Subdomains of
// a trusted domain are trusted as well.
var defaultTrustedDomains = []string{
	"google.com", "gmail.com", "youtube.com", "facebook.com", "meta.com",
	"amazon.com", "amazonpay.in", "apple.com", "microsoft.com", "netflix.com",
	"twitter.com", "x.com", "instagram.com", "linkedin.com", "whatsapp.com",
	"wikipedia.org", "reddit.com", "github.com", "stackoverflow.com",
	"hdfcbank.com", "icicibank.com", "sbi.co.in", "onlinesbi.sbi",
	"axisbank.com", "kotakbank.com", "yesbank.in", "pnbindia.in",
	"bankofbaroda.in", "canarabank.com", "unionbankofindia.co.in",
	"paytm.com", "phonepe.com", "googlepay.com",
	"bhimupi.org.in", "npci.org.in", "upi.com",
	"gov.in", "nic.in", "uidai.gov.in", "epfindia.gov.in",
}

// defaultBlacklistPatterns match hosts that impersonate banking or payment
// flows; a hit short-circuits Stage 1 straight to BLOCK.
var defaultBlacklistPatterns = []string{
	`.*-verify.*\.com$`,
	`.*-kyc.*\.com$`,
	`.*-update.*\.com$`,
	`.*-secure.*\.com$`,
	`.*-block.*\.com$`,
	`.*-suspended.*\.com$`,
	`.*-reactivate.*\.com$`,
	`.*-confirm.*\.com$`,
	`upi-.*\.com$`,
	`.*-upi\.com$`,
	`sbi-.*\.com$`,
	`hdfc-.*\.com$`,
	`icici-.*\.com$`,
	`paytm-.*\.com$`,
	`.*-bank.*\.com$`,
	`.*bank-.*\.com$`,
}

// defaultDomainKeywords inside a non-trusted host are treated as phishing
// markers.
var defaultDomainKeywords = []string{
	"verify", "kyc", "update", "secure", "block", "suspended",
	"reactivate", "confirm", "urgent", "expire", "bank-login",
	"net-banking", "account-verify", "customer-care",
}

// defaultMessageKeywords flag pressure and lure phrases in text messages.
var defaultMessageKeywords = []string{
	"kyc", "verify", "suspended", "blocked", "expire", "update",
	"urgent", "immediately", "click here", "limited time",
	"congratulations", "winner", "prize", "lottery", "cashback",
	"refund", "reward", "claim", "account", "bank",
}

// defaultVPAProviders is the allowlist of known payment-provider handles.
var defaultVPAProviders = []string{
	"oksbi", "okhdfcbank", "okicici", "okaxis", "okpaytm", "upi", "ybl",
	"okpay", "phonepe", "gpay", "ptaxis", "paytm", "paytmqr", "axl", "ibl", "apl",
}

// defaultIndicatorWeights map behavioural indicators to their dynamic-score
// contribution.  Credential-harvesting indicators weigh more than generic
// redirect indicators.
var defaultIndicatorWeights = map[string]float64{
	"suspicious_domain":             0.35,
	"has_password_field":            0.15,
	"has_otp_field":                 0.20,
	"mimics_banking_ui":             0.25,
	"requests_sensitive_info":       0.30,
	"redirects_to_different_domain": 0.15,
	"suspicious_javascript":         0.20,
	"connection_failed":             0.25,
}

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.  It must be called after unmarshalling and
// before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}

	if cfg.Model.ClassifierPath == "" {
		cfg.Model.ClassifierPath = DefaultClassifierPath
	}
	if cfg.Model.AnomalyPath == "" {
		cfg.Model.AnomalyPath = DefaultAnomalyPath
	}
	if cfg.Model.ClassifierWeight == 0 && cfg.Model.AnomalyWeight == 0 {
		cfg.Model.ClassifierWeight = DefaultClassifierWeight
		cfg.Model.AnomalyWeight = DefaultAnomalyWeight
	}
	if cfg.Model.OKThreshold == 0 && cfg.Model.BlockThreshold == 0 {
		cfg.Model.OKThreshold = DefaultOKThreshold
		cfg.Model.BlockThreshold = DefaultBlockThreshold
	}

	if cfg.Rules.TrustedDomains == nil {
		cfg.Rules.TrustedDomains = defaultTrustedDomains
	}
	if cfg.Rules.BlacklistPatterns == nil {
		cfg.Rules.BlacklistPatterns = defaultBlacklistPatterns
	}
	if cfg.Rules.DomainKeywords == nil {
		cfg.Rules.DomainKeywords = defaultDomainKeywords
	}
	if cfg.Rules.ListPrecedence == "" {
		cfg.Rules.ListPrecedence = PrecedenceBlacklist
	}
	if cfg.Rules.MessageKeywords == nil {
		cfg.Rules.MessageKeywords = defaultMessageKeywords
	}
	if cfg.Rules.MessageKeywordWeight == 0 {
		cfg.Rules.MessageKeywordWeight = DefaultMessageKeywordWeight
	}
	if cfg.Rules.VPAProviders == nil {
		cfg.Rules.VPAProviders = defaultVPAProviders
	}

	if cfg.Probe.TotalDeadline == 0 {
		cfg.Probe.TotalDeadline = DefaultProbeTotalDeadline
	}
	if cfg.Probe.AttemptTimeout == 0 {
		cfg.Probe.AttemptTimeout = DefaultProbeAttemptTimeout
	}
	if cfg.Probe.MaxRetries == 0 {
		cfg.Probe.MaxRetries = DefaultProbeMaxRetries
	}
	if cfg.Probe.IndicatorWeights == nil {
		cfg.Probe.IndicatorWeights = defaultIndicatorWeights
	}

	if cfg.Events.Topic == "" {
		cfg.Events.Topic = DefaultEventsTopic
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
