package staticmodel

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	"github.com/scamshield/riskengine/internal/intelligence/featextract"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// Scorer runs the static assessment stage. It is safe for concurrent
// use once constructed.
type Scorer struct {
	classifier Classifier
	anomaly    AnomalyDetector

	model config.ModelConfig
	rules config.RulesConfig

	blacklist    []*regexp.Regexp
	vpaProviders map[string]bool

	logger logging.Logger
}

// NewScorer wires a scorer from loaded models and validated config.
// Blacklist patterns were syntax-checked during config validation, so
// a compile failure here indicates a programming error upstream.
func NewScorer(classifier Classifier, anomaly AnomalyDetector, modelCfg config.ModelConfig, rules config.RulesConfig, logger logging.Logger) (*Scorer, error) {
	blacklist := make([]*regexp.Regexp, 0, len(rules.BlacklistPatterns))
	for _, pattern := range rules.BlacklistPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation,
				fmt.Sprintf("invalid blacklist pattern %q", pattern))
		}
		blacklist = append(blacklist, re)
	}

	providers := make(map[string]bool, len(rules.VPAProviders))
	for _, p := range rules.VPAProviders {
		providers[strings.ToLower(p)] = true
	}

	return &Scorer{
		classifier:   classifier,
		anomaly:      anomaly,
		model:        modelCfg,
		rules:        rules,
		blacklist:    blacklist,
		vpaProviders: providers,
		logger:       logger.Named("staticmodel"),
	}, nil
}

// NewScorerFromConfig loads the model artifacts referenced by the
// config and builds a scorer. Intended for process startup; any error
// is fatal.
func NewScorerFromConfig(cfg *config.Config, logger logging.Logger) (*Scorer, error) {
	classifier, err := LoadClassifier(cfg.Model.ClassifierPath)
	if err != nil {
		return nil, err
	}
	anomaly, err := LoadAnomalyDetector(cfg.Model.AnomalyPath)
	if err != nil {
		return nil, err
	}
	return NewScorer(classifier, anomaly, cfg.Model, cfg.Rules, logger)
}

// Score produces the static risk score for a validated request. List
// hits short-circuit before any model runs. Feature extraction
// failures degrade the result to WARN instead of failing the request.
func (s *Scorer) Score(ctx context.Context, req artifact.RiskRequest) (artifact.StaticScore, error) {
	if err := ctx.Err(); err != nil {
		return artifact.StaticScore{}, apperrors.Wrap(err, apperrors.ErrCodeTimeout, "static scoring cancelled")
	}

	if score, hit := s.checkLists(req); hit {
		return score, nil
	}

	features, reasons, err := s.extract(req)
	if err != nil {
		s.logger.Warn("feature extraction failed, degrading to WARN",
			logging.String("artifact_type", string(req.Type)),
			logging.Err(err))
		return artifact.StaticScore{
			CombinedScore: s.model.OKThreshold + (s.model.BlockThreshold-s.model.OKThreshold)/2,
			Verdict:       artifact.VerdictWarn,
			Reasons:       []string{"feature extraction degraded, manual review advised"},
		}, nil
	}

	prob := s.classifier.Probability(features)
	anomalyScore := s.anomaly.Score(features)
	combined := s.model.ClassifierWeight*prob + s.model.AnomalyWeight*anomalyScore

	// Rule hits on messages boost the model score additively.
	if req.Type == artifact.TypeMessage {
		combined = math.Min(1.0, combined+s.rules.MessageKeywordWeight*features["keyword_hits"])
	}

	verdict := artifact.VerdictForScore(combined, s.model.OKThreshold, s.model.BlockThreshold)
	reasons = append(reasons, s.verdictReason(verdict, combined))

	return artifact.StaticScore{
		ClassifierProbability: prob,
		AnomalyScore:          anomalyScore,
		CombinedScore:         combined,
		Verdict:               verdict,
		Reasons:               artifact.DedupeReasons(reasons),
	}, nil
}

// checkLists applies the trusted and blacklist checks. Precedence when
// both lists match is operator-configurable and defaults to blacklist
// winning.
func (s *Scorer) checkLists(req artifact.RiskRequest) (artifact.StaticScore, bool) {
	// Blacklist patterns are written against hostnames, so links are
	// matched on their host. Other artifact types match on the whole
	// canonical value.
	value := req.CanonicalValue
	if req.Type == artifact.TypeLink {
		if parsed, err := url.Parse(value); err == nil && parsed.Host != "" {
			value = strings.ToLower(parsed.Hostname())
		}
	}

	blacklisted, blackReason := s.blacklistMatch(value)
	trusted, trustReason := s.trustedMatch(req)

	if blacklisted && trusted {
		if s.rules.ListPrecedence == config.PrecedenceWhitelist {
			blacklisted = false
		} else {
			trusted = false
		}
	}

	// Phishing keywords only condemn hosts no list vouches for or
	// against; "update" inside a trusted host is not a hit.
	if !blacklisted && !trusted && req.Type == artifact.TypeLink {
		blacklisted, blackReason = s.keywordMatch(value)
	}

	switch {
	case blacklisted:
		return artifact.StaticScore{
			CombinedScore: 1.0,
			Verdict:       artifact.VerdictBlock,
			Reasons:       []string{blackReason},
		}, true
	case trusted:
		return artifact.StaticScore{
			CombinedScore: 0.0,
			Verdict:       artifact.VerdictOK,
			Reasons:       []string{trustReason},
		}, true
	}
	return artifact.StaticScore{}, false
}

func (s *Scorer) blacklistMatch(value string) (bool, string) {
	for _, re := range s.blacklist {
		if re.MatchString(value) {
			return true, fmt.Sprintf("matched blacklist pattern %q", re.String())
		}
	}
	return false, ""
}

// keywordMatch scans a link's host for configured phishing markers.
func (s *Scorer) keywordMatch(host string) (bool, string) {
	for _, kw := range s.rules.DomainKeywords {
		if kw != "" && strings.Contains(host, strings.ToLower(kw)) {
			return true, fmt.Sprintf("domain contains high-risk keyword %q", kw)
		}
	}
	return false, ""
}

func (s *Scorer) trustedMatch(req artifact.RiskRequest) (bool, string) {
	if req.Type != artifact.TypeLink {
		return false, ""
	}
	parsed, err := url.Parse(req.CanonicalValue)
	if err != nil || parsed.Host == "" {
		return false, ""
	}
	host := strings.ToLower(parsed.Hostname())
	for _, domain := range s.rules.TrustedDomains {
		d := strings.ToLower(domain)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true, fmt.Sprintf("domain %s is on the trusted list", host)
		}
	}
	return false, ""
}

// extract builds the feature vector and the feature-derived reasons
// for one artifact.
func (s *Scorer) extract(req artifact.RiskRequest) (featextract.FeatureVector, []string, error) {
	switch req.Type {
	case artifact.TypeLink:
		features, err := featextract.ExtractURL(req.CanonicalValue)
		if err != nil {
			return nil, nil, err
		}
		return features, linkReasons(features), nil

	case artifact.TypeVPA:
		features, err := featextract.ExtractVPA(req.CanonicalValue, s.vpaProviders)
		if err != nil {
			return nil, nil, err
		}
		return features, vpaReasons(features), nil

	case artifact.TypeMessage:
		mf := featextract.ExtractMessage(req.CanonicalValue, s.rules.MessageKeywords)
		return mf.Vector, messageReasons(mf), nil

	default:
		return nil, nil, apperrors.Newf(apperrors.ErrCodeUnsupportedArtifact,
			"no feature extractor for artifact type %s", req.Type)
	}
}

func linkReasons(f featextract.FeatureVector) []string {
	var reasons []string
	if f["brand_impersonation"] == 1.0 {
		reasons = append(reasons, "brand name on unofficial domain")
	}
	if f["risky_tld_flag"] == 1.0 {
		reasons = append(reasons, "high-risk top-level domain")
	}
	if f["http_or_bad_ssl"] == 1.0 {
		reasons = append(reasons, "connection not protected by TLS")
	}
	if f["has_kyc_or_verify"] == 1.0 {
		reasons = append(reasons, "KYC or verification keyword in URL")
	}
	if f["qr_from_shortener"] == 1.0 {
		reasons = append(reasons, "URL behind a link shortener")
	}
	if f["small_amount_verification"] == 1.0 {
		reasons = append(reasons, "small-amount verification payment requested")
	}
	if f["vpa_format_valid"] == 1.0 && f["vpa_provider_allow"] == 0.0 {
		reasons = append(reasons, "payee provider not on the trusted PSP list")
	}
	if f["deep_subdomain_flag"] == 1.0 {
		reasons = append(reasons, "unusually deep subdomain nesting")
	}
	return reasons
}

func vpaReasons(f featextract.FeatureVector) []string {
	var reasons []string
	if f["vpa_format_valid"] == 0.0 {
		reasons = append(reasons, "malformed payment address")
	}
	if f["vpa_format_valid"] == 1.0 && f["vpa_provider_allow"] == 0.0 {
		reasons = append(reasons, "provider not on the trusted PSP list")
	}
	if f["all_digits"] == 1.0 {
		reasons = append(reasons, "handle is digits only")
	}
	if f["short_handle"] == 1.0 {
		reasons = append(reasons, "very short handle")
	}
	if f["vpa_entropy"] > 0.62 {
		reasons = append(reasons, "high randomness in handle")
	}
	return reasons
}

func messageReasons(mf featextract.MessageFeatures) []string {
	var reasons []string
	for _, kw := range mf.KeywordHits {
		reasons = append(reasons, fmt.Sprintf("high-risk keyword: %s", kw))
	}
	if mf.Vector["has_url"] == 1.0 {
		reasons = append(reasons, "contains embedded URL")
	}
	if mf.Vector["has_phone"] == 1.0 {
		reasons = append(reasons, "contains phone number")
	}
	if mf.Vector["urgency_count"] > 0 {
		reasons = append(reasons, "urgency pressure language")
	}
	if mf.Vector["all_caps"] == 1.0 {
		reasons = append(reasons, "entire message in capitals")
	}
	return reasons
}

func (s *Scorer) verdictReason(v artifact.Verdict, score float64) string {
	switch v {
	case artifact.VerdictBlock:
		return fmt.Sprintf("static risk score %.2f at or above block threshold", score)
	case artifact.VerdictWarn:
		return fmt.Sprintf("static risk score %.2f in caution range", score)
	default:
		return fmt.Sprintf("static risk score %.2f within safe range", score)
	}
}
