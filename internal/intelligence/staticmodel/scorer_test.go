package staticmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/intelligence/featextract"
	"github.com/scamshield/riskengine/internal/testutil"
)

type stubClassifier struct {
	prob  float64
	calls int
}

func (s *stubClassifier) Probability(featextract.FeatureVector) float64 {
	s.calls++
	return s.prob
}

type stubAnomaly struct {
	score float64
	calls int
}

func (s *stubAnomaly) Score(featextract.FeatureVector) float64 {
	s.calls++
	return s.score
}

func newTestScorer(t *testing.T, prob, anomaly float64, mutate func(*config.Config)) (*Scorer, *stubClassifier, *stubAnomaly) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	c := &stubClassifier{prob: prob}
	a := &stubAnomaly{score: anomaly}
	s, err := NewScorer(c, a, cfg.Model, cfg.Rules, testutil.NewMockLogger())
	require.NoError(t, err)
	return s, c, a
}

func linkRequest(value string) artifact.RiskRequest {
	return artifact.RiskRequest{Type: artifact.TypeLink, CanonicalValue: value}
}

func TestScore_WeightedCombination(t *testing.T) {
	// 0.7*0.92 + 0.3*0.40 = 0.764, at or above the 0.75 block threshold.
	s, _, _ := newTestScorer(t, 0.92, 0.40, nil)

	score, err := s.Score(context.Background(), linkRequest("https://unknown-merchant.example/pay"))
	require.NoError(t, err)

	assert.InDelta(t, 0.764, score.CombinedScore, 1e-9)
	assert.Equal(t, artifact.VerdictBlock, score.Verdict)
	assert.Equal(t, 0.92, score.ClassifierProbability)
	assert.Equal(t, 0.40, score.AnomalyScore)
	assert.NotEmpty(t, score.Reasons)
}

func TestScore_SafeRange(t *testing.T) {
	s, _, _ := newTestScorer(t, 0.1, 0.1, nil)

	score, err := s.Score(context.Background(), linkRequest("https://unknown-merchant.example/pay"))
	require.NoError(t, err)

	assert.Equal(t, artifact.VerdictOK, score.Verdict)
	assert.NotEmpty(t, score.Reasons)
}

func TestScore_CautionRange(t *testing.T) {
	// 0.7*0.6 + 0.3*0.3 = 0.51, between the thresholds.
	s, _, _ := newTestScorer(t, 0.6, 0.3, nil)

	score, err := s.Score(context.Background(), linkRequest("https://unknown-merchant.example/pay"))
	require.NoError(t, err)
	assert.Equal(t, artifact.VerdictWarn, score.Verdict)
}

func TestScore_TrustedDomainSkipsModels(t *testing.T) {
	s, c, a := newTestScorer(t, 0.99, 0.99, nil)

	score, err := s.Score(context.Background(), linkRequest("https://paytm.com/recharge"))
	require.NoError(t, err)

	assert.Equal(t, artifact.VerdictOK, score.Verdict)
	assert.Equal(t, 0.0, score.CombinedScore)
	assert.NotEmpty(t, score.Reasons)
	assert.Zero(t, c.calls, "trusted hit must not invoke the classifier")
	assert.Zero(t, a.calls, "trusted hit must not invoke the anomaly detector")
}

func TestScore_TrustedSubdomain(t *testing.T) {
	s, c, _ := newTestScorer(t, 0.99, 0.99, nil)

	score, err := s.Score(context.Background(), linkRequest("https://pay.paytm.com/checkout"))
	require.NoError(t, err)
	assert.Equal(t, artifact.VerdictOK, score.Verdict)
	assert.Zero(t, c.calls)
}

func TestScore_LookalikeDomainNotTrusted(t *testing.T) {
	s, c, _ := newTestScorer(t, 0.5, 0.5, nil)

	_, err := s.Score(context.Background(), linkRequest("https://paytm.com.evil.tk/login"))
	require.NoError(t, err)
	assert.Equal(t, 1, c.calls, "lookalike domain must be scored by the models")
}

func TestScore_BlacklistSkipsModels(t *testing.T) {
	s, c, a := newTestScorer(t, 0.0, 0.0, func(cfg *config.Config) {
		cfg.Rules.BlacklistPatterns = []string{`evil-domain\.example`}
	})

	score, err := s.Score(context.Background(), linkRequest("https://evil-domain.example/login"))
	require.NoError(t, err)

	assert.Equal(t, artifact.VerdictBlock, score.Verdict)
	assert.Equal(t, 1.0, score.CombinedScore)
	assert.NotEmpty(t, score.Reasons)
	assert.Zero(t, c.calls)
	assert.Zero(t, a.calls)
}

func TestScore_DomainKeywordShortCircuits(t *testing.T) {
	s, c, a := newTestScorer(t, 0.0, 0.0, nil)

	// Host carries the phishing marker "verify" but matches no
	// blacklist pattern; the keyword rule alone must block it.
	score, err := s.Score(context.Background(), linkRequest("https://verify-accounts.net/login"))
	require.NoError(t, err)

	assert.Equal(t, artifact.VerdictBlock, score.Verdict)
	assert.Equal(t, 1.0, score.CombinedScore)
	assert.Contains(t, score.Reasons[0], `high-risk keyword "verify"`)
	assert.Zero(t, c.calls)
	assert.Zero(t, a.calls)
}

func TestScore_DomainKeywordSparesTrustedHost(t *testing.T) {
	s, c, _ := newTestScorer(t, 0.99, 0.99, nil)

	// "update" sits inside the host, but microsoft.com is trusted.
	score, err := s.Score(context.Background(), linkRequest("https://updates.microsoft.com/catalog"))
	require.NoError(t, err)

	assert.Equal(t, artifact.VerdictOK, score.Verdict)
	assert.Zero(t, c.calls)
}

func TestScore_DomainKeywordOnlyAppliesToLinks(t *testing.T) {
	s, c, _ := newTestScorer(t, 0.1, 0.1, nil)

	score, err := s.Score(context.Background(), artifact.RiskRequest{
		Type:           artifact.TypeMessage,
		CanonicalValue: "please verify your order",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, c.calls, "message text must reach the models")
	assert.NotEqual(t, 1.0, score.CombinedScore)
}

func TestScore_ListPrecedence(t *testing.T) {
	// paytm.com is on the default trusted list; blacklist it too and
	// check that precedence decides.
	mutateBoth := func(cfg *config.Config) {
		cfg.Rules.BlacklistPatterns = []string{`paytm\.com`}
	}

	s, _, _ := newTestScorer(t, 0, 0, mutateBoth)
	score, err := s.Score(context.Background(), linkRequest("https://paytm.com/x"))
	require.NoError(t, err)
	assert.Equal(t, artifact.VerdictBlock, score.Verdict, "blacklist wins by default")

	s, _, _ = newTestScorer(t, 0, 0, func(cfg *config.Config) {
		mutateBoth(cfg)
		cfg.Rules.ListPrecedence = config.PrecedenceWhitelist
	})
	score, err = s.Score(context.Background(), linkRequest("https://paytm.com/x"))
	require.NoError(t, err)
	assert.Equal(t, artifact.VerdictOK, score.Verdict)
}

func TestScore_MessageKeywordBoost(t *testing.T) {
	s, _, _ := newTestScorer(t, 0.2, 0.2, func(cfg *config.Config) {
		cfg.Rules.MessageKeywords = []string{"kyc", "suspended", "urgent"}
		cfg.Rules.MessageKeywordWeight = 0.15
	})

	req := artifact.RiskRequest{
		Type:           artifact.TypeMessage,
		CanonicalValue: "URGENT your account is suspended, complete KYC",
	}
	score, err := s.Score(context.Background(), req)
	require.NoError(t, err)

	// Base 0.2 plus 3 keyword hits at 0.15 each.
	assert.InDelta(t, 0.65, score.CombinedScore, 1e-9)
	assert.Equal(t, artifact.VerdictWarn, score.Verdict)
	assert.Contains(t, score.Reasons, "high-risk keyword: kyc")
}

func TestScore_MessageScoreCapped(t *testing.T) {
	s, _, _ := newTestScorer(t, 0.9, 0.9, func(cfg *config.Config) {
		cfg.Rules.MessageKeywords = []string{"kyc", "suspended", "urgent", "verify", "blocked"}
	})

	req := artifact.RiskRequest{
		Type:           artifact.TypeMessage,
		CanonicalValue: "URGENT verify KYC account suspended blocked",
	}
	score, err := s.Score(context.Background(), req)
	require.NoError(t, err)
	assert.LessOrEqual(t, score.CombinedScore, 1.0)
	assert.Equal(t, artifact.VerdictBlock, score.Verdict)
}

func TestScore_VPAReasons(t *testing.T) {
	s, _, _ := newTestScorer(t, 0.8, 0.5, nil)

	req := artifact.RiskRequest{Type: artifact.TypeVPA, CanonicalValue: "98413275@evilpsp"}
	score, err := s.Score(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, score.Reasons, "provider not on the trusted PSP list")
	assert.Contains(t, score.Reasons, "handle is digits only")
}

func TestScore_CancelledContext(t *testing.T) {
	s, _, _ := newTestScorer(t, 0.5, 0.5, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Score(ctx, linkRequest("https://example.com"))
	require.Error(t, err)
}

func TestScore_ReasonsNeverEmpty(t *testing.T) {
	s, _, _ := newTestScorer(t, 0.0, 0.0, nil)

	score, err := s.Score(context.Background(), linkRequest("https://plain.example.org/"))
	require.NoError(t, err)
	assert.NotEmpty(t, score.Reasons)
}

func TestNewScorer_BadBlacklistPattern(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Rules.BlacklistPatterns = []string{"("}
	_, err := NewScorer(&stubClassifier{}, &stubAnomaly{}, cfg.Model, cfg.Rules, testutil.NewMockLogger())
	require.Error(t, err)
}
