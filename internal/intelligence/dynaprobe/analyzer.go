package dynaprobe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// Analyzer drives probe attempts and converts what the prober saw into
// behavioral findings. It is safe for concurrent use.
type Analyzer struct {
	registry *Registry

	cfg            config.ProbeConfig
	trustedDomains []string
	okThreshold    float64
	blockThreshold float64

	logger logging.Logger
}

// NewAnalyzer builds an analyzer over a prober registry. Verdict
// thresholds are shared with the static stage so both stages speak the
// same severity scale.
func NewAnalyzer(registry *Registry, cfg config.ProbeConfig, rules config.RulesConfig, model config.ModelConfig, logger logging.Logger) *Analyzer {
	return &Analyzer{
		registry:       registry,
		cfg:            cfg,
		trustedDomains: rules.TrustedDomains,
		okThreshold:    model.OKThreshold,
		blockThreshold: model.BlockThreshold,
		logger:         logger.Named("dynaprobe"),
	}
}

// Supports reports whether the analyzer can probe the given artifact
// type at all.
func (a *Analyzer) Supports(t artifact.Type) bool {
	return a.registry.Supports(t)
}

// Analyze probes the artifact and scores its runtime behavior. Each
// attempt gets a shrinking slice of the total deadline; the last
// attempt's failure is returned when every attempt fails. All returned
// errors carry a PROBE_* code.
func (a *Analyzer) Analyze(ctx context.Context, req artifact.RiskRequest) (*artifact.BehavioralFindings, error) {
	prober, err := a.registry.Lookup(req.Type)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.TotalDeadline)
	defer cancel()

	attempts := a.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		remaining := time.Until(deadlineOf(ctx))
		if remaining <= 0 {
			break
		}
		attemptTimeout := a.cfg.AttemptTimeout
		if attemptTimeout > remaining {
			attemptTimeout = remaining
		}

		obs, probeErr := a.attempt(ctx, prober, req.CanonicalValue, attemptTimeout)
		if probeErr == nil {
			return a.findings(req.CanonicalValue, obs), nil
		}
		lastErr = probeErr

		// Unsupported content never improves on retry.
		if apperrors.IsCode(probeErr, apperrors.ErrCodeProbeUnsupported) {
			break
		}
		a.logger.Warn("probe attempt failed",
			logging.Int("attempt", attempt+1),
			logging.String("target", req.CanonicalValue),
			logging.Err(probeErr))
	}

	if lastErr == nil {
		lastErr = apperrors.New(apperrors.ErrCodeProbeTimeout, "probe deadline exhausted before first attempt")
	}
	return nil, lastErr
}

func (a *Analyzer) attempt(ctx context.Context, prober Prober, targetURL string, timeout time.Duration) (*Observation, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	obs, err := prober.Probe(attemptCtx, targetURL)
	if err != nil {
		return nil, classifyProbeError(err)
	}
	return obs, nil
}

// findings assembles the stage result. A redirect that lands on a
// trusted domain is resolved OK immediately, everything else goes
// through indicator scoring.
func (a *Analyzer) findings(targetURL string, obs *Observation) *artifact.BehavioralFindings {
	origin := hostOf(targetURL)
	final := hostOf(obs.FinalURL)
	if final != "" && final != origin && domainTrusted(final, a.trustedDomains) {
		return &artifact.BehavioralFindings{
			Indicators:   map[string]bool{},
			DynamicScore: 0.1,
			Verdict:      artifact.VerdictOK,
			Reasons:      []string{fmt.Sprintf("redirects to trusted domain %s", final)},
		}
	}

	indicators, score, reasons := evaluate(targetURL, obs, a.trustedDomains, a.cfg.IndicatorWeights)
	verdict := artifact.VerdictForScore(score, a.okThreshold, a.blockThreshold)
	if len(reasons) == 0 {
		reasons = []string{"no suspicious runtime behavior observed"}
	}
	return &artifact.BehavioralFindings{
		Indicators:   indicators,
		DynamicScore: score,
		Verdict:      verdict,
		Reasons:      reasons,
	}
}

// classifyProbeError normalises prober failures into the probe error
// taxonomy. Errors already carrying a PROBE_* code pass through.
func classifyProbeError(err error) error {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeProbeTimeout, apperrors.ErrCodeProbeUnreachable,
		apperrors.ErrCodeProbeRender, apperrors.ErrCodeProbeUnsupported:
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrCodeProbeTimeout, "probe attempt timed out")
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.ErrCodeProbeTimeout, "probe cancelled")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeProbeRender, "probe failed to render target")
}

func deadlineOf(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(time.Hour)
}
