package dynaprobe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/testutil"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

type fakeProber struct {
	obs   *Observation
	errs  []error
	calls int
}

func (f *fakeProber) Probe(ctx context.Context, targetURL string) (*Observation, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.obs, nil
}

func newTestAnalyzer(t *testing.T, p Prober, mutate func(*config.Config)) *Analyzer {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Probe.TotalDeadline = 5 * time.Second
	cfg.Probe.AttemptTimeout = 2 * time.Second
	if mutate != nil {
		mutate(cfg)
	}
	reg := NewRegistry()
	reg.Register(artifact.TypeLink, p)
	return NewAnalyzer(reg, cfg.Probe, cfg.Rules, cfg.Model, testutil.NewMockLogger())
}

func linkRequest(value string) artifact.RiskRequest {
	return artifact.RiskRequest{Type: artifact.TypeLink, CanonicalValue: value}
}

func TestAnalyze_CredentialHarvestingPage(t *testing.T) {
	p := &fakeProber{obs: &Observation{
		FinalURL:         "https://paytm-kyc.xyz/login",
		PageContent:      `<form><input type=password><input name=otp></form> netbanking card number`,
		HasPasswordField: true,
		HasOTPField:      true,
	}}
	a := newTestAnalyzer(t, p, nil)

	findings, err := a.Analyze(context.Background(), linkRequest("https://paytm-kyc.xyz/login"))
	require.NoError(t, err)

	assert.True(t, findings.Indicators[IndicatorSuspiciousDomain])
	assert.True(t, findings.Indicators[IndicatorPasswordField])
	assert.True(t, findings.Indicators[IndicatorOTPField])
	assert.True(t, findings.Indicators[IndicatorBankingUI])
	assert.True(t, findings.Indicators[IndicatorSensitiveInfo])
	// 0.35 + 0.15 + 0.20 + 0.25 + 0.30 caps at 1.0.
	assert.Equal(t, 1.0, findings.DynamicScore)
	assert.Equal(t, artifact.VerdictBlock, findings.Verdict)
	assert.NotEmpty(t, findings.Reasons)
}

func TestAnalyze_BenignPage(t *testing.T) {
	p := &fakeProber{obs: &Observation{
		FinalURL:    "https://smallshop.example/products",
		PageContent: "<html><body>Welcome to our shop</body></html>",
	}}
	a := newTestAnalyzer(t, p, nil)

	findings, err := a.Analyze(context.Background(), linkRequest("https://smallshop.example/products"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, findings.DynamicScore)
	assert.Equal(t, artifact.VerdictOK, findings.Verdict)
	assert.Equal(t, []string{"no suspicious runtime behavior observed"}, findings.Reasons)
}

func TestAnalyze_PasswordFieldOnCleanDomainNotScored(t *testing.T) {
	// Login forms are normal on legitimate sites; the indicator is
	// recorded but contributes nothing without a suspicious domain.
	p := &fakeProber{obs: &Observation{
		FinalURL:         "https://smallshop.example/login",
		PageContent:      `<input type=password>`,
		HasPasswordField: true,
	}}
	a := newTestAnalyzer(t, p, nil)

	findings, err := a.Analyze(context.Background(), linkRequest("https://smallshop.example/login"))
	require.NoError(t, err)

	assert.True(t, findings.Indicators[IndicatorPasswordField])
	assert.Equal(t, 0.0, findings.DynamicScore)
	assert.Equal(t, artifact.VerdictOK, findings.Verdict)
}

func TestAnalyze_InvalidCertificateScored(t *testing.T) {
	p := &fakeProber{obs: &Observation{
		FinalURL:    "https://kyc-update.xyz/",
		PageContent: "<html><body>verify now</body></html>",
		TLSInvalid:  true,
	}}
	a := newTestAnalyzer(t, p, nil)

	findings, err := a.Analyze(context.Background(), linkRequest("https://kyc-update.xyz/"))
	require.NoError(t, err)

	assert.True(t, findings.Indicators[IndicatorConnectionFailed])
	// 0.35 suspicious domain + 0.25 broken TLS.
	assert.InDelta(t, 0.6, findings.DynamicScore, 1e-9)
	assert.Equal(t, artifact.VerdictWarn, findings.Verdict)
	assert.Contains(t, findings.Reasons, "TLS certificate failed validation")
}

func TestAnalyze_RedirectToTrustedDomain(t *testing.T) {
	p := &fakeProber{obs: &Observation{
		FinalURL:    "https://secure.paytm.com/checkout",
		PageContent: "<html></html>",
	}}
	a := newTestAnalyzer(t, p, nil)

	findings, err := a.Analyze(context.Background(), linkRequest("https://pay-now.example/redirect"))
	require.NoError(t, err)

	assert.Equal(t, artifact.VerdictOK, findings.Verdict)
	assert.Equal(t, 0.1, findings.DynamicScore)
	assert.Contains(t, findings.Reasons[0], "trusted domain")
}

func TestAnalyze_CrossDomainRedirect(t *testing.T) {
	p := &fakeProber{obs: &Observation{
		FinalURL:    "https://totally-different.example/land",
		PageContent: "<html></html>",
	}}
	a := newTestAnalyzer(t, p, nil)

	findings, err := a.Analyze(context.Background(), linkRequest("https://start.example/go"))
	require.NoError(t, err)

	assert.True(t, findings.Indicators[IndicatorCrossDomainRedirect])
	assert.InDelta(t, 0.15, findings.DynamicScore, 1e-9)
}

func TestAnalyze_RetriesThenSucceeds(t *testing.T) {
	p := &fakeProber{
		obs:  &Observation{FinalURL: "https://smallshop.example", PageContent: "<html></html>"},
		errs: []error{apperrors.New(apperrors.ErrCodeProbeUnreachable, "refused")},
	}
	a := newTestAnalyzer(t, p, nil)

	findings, err := a.Analyze(context.Background(), linkRequest("https://smallshop.example"))
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, artifact.VerdictOK, findings.Verdict)
}

func TestAnalyze_AllAttemptsFail(t *testing.T) {
	p := &fakeProber{errs: []error{
		apperrors.New(apperrors.ErrCodeProbeUnreachable, "refused"),
		apperrors.New(apperrors.ErrCodeProbeUnreachable, "refused"),
		apperrors.New(apperrors.ErrCodeProbeTimeout, "timed out"),
	}}
	a := newTestAnalyzer(t, p, nil)

	_, err := a.Analyze(context.Background(), linkRequest("https://dead.example"))
	require.Error(t, err)
	assert.True(t, apperrors.IsProbeFailure(err))
	assert.Equal(t, apperrors.ErrCodeProbeTimeout, apperrors.CodeOf(err))
	assert.Equal(t, 3, p.calls, "max retries of 2 means three attempts")
}

func TestAnalyze_UnsupportedNotRetried(t *testing.T) {
	p := &fakeProber{errs: []error{
		apperrors.New(apperrors.ErrCodeProbeUnsupported, "no renderer for content"),
		apperrors.New(apperrors.ErrCodeProbeUnsupported, "no renderer for content"),
	}}
	a := newTestAnalyzer(t, p, nil)

	_, err := a.Analyze(context.Background(), linkRequest("https://weird.example"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProbeUnsupported, apperrors.CodeOf(err))
	assert.Equal(t, 1, p.calls)
}

func TestAnalyze_UnknownArtifactType(t *testing.T) {
	a := newTestAnalyzer(t, &fakeProber{}, nil)

	_, err := a.Analyze(context.Background(), artifact.RiskRequest{
		Type: artifact.TypeVPA, CanonicalValue: "user@oksbi",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProbeUnsupported, apperrors.CodeOf(err))
}

func TestAnalyze_WrapsUnknownErrors(t *testing.T) {
	p := &fakeProber{errs: []error{
		context.DeadlineExceeded,
		context.DeadlineExceeded,
		context.DeadlineExceeded,
	}}
	a := newTestAnalyzer(t, p, nil)

	_, err := a.Analyze(context.Background(), linkRequest("https://slow.example"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProbeTimeout, apperrors.CodeOf(err))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Supports(artifact.TypeLink))

	p := &fakeProber{}
	reg.Register(artifact.TypeLink, p)
	assert.True(t, reg.Supports(artifact.TypeLink))

	got, err := reg.Lookup(artifact.TypeLink)
	require.NoError(t, err)
	assert.Same(t, Prober(p), got)

	_, err = reg.Lookup(artifact.TypeQR)
	assert.Equal(t, apperrors.ErrCodeProbeUnsupported, apperrors.CodeOf(err))
}
