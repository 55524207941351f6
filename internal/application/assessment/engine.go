package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	"github.com/scamshield/riskengine/internal/intelligence/featextract"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// maxEmbeddedLinks caps how many URLs inside one message are escalated
// into link assessments of their own.
const maxEmbeddedLinks = 2

// StaticScorer is the first assessment stage.
type StaticScorer interface {
	Score(ctx context.Context, req artifact.RiskRequest) (artifact.StaticScore, error)
}

// DynamicAnalyzer is the second assessment stage.
type DynamicAnalyzer interface {
	Supports(t artifact.Type) bool
	Analyze(ctx context.Context, req artifact.RiskRequest) (*artifact.BehavioralFindings, error)
}

// MetricsRecorder receives engine-level observations. A nop
// implementation is used when metrics are disabled.
type MetricsRecorder interface {
	RecordAssessment(artifactType, verdict string, cached bool, elapsed time.Duration)
	RecordCacheLookup(hit bool)
	RecordProbe(outcome string)
	RecordStageDuration(stage string, elapsed time.Duration)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) RecordAssessment(string, string, bool, time.Duration) {}
func (NopMetrics) RecordCacheLookup(bool)                               {}
func (NopMetrics) RecordProbe(string)                                   {}
func (NopMetrics) RecordStageDuration(string, time.Duration)            {}

// Deps carries everything an Engine needs. Cache, Events, Metrics and
// Now are optional; the zero value falls back to an in-memory cache, a
// nop publisher, nop metrics and the wall clock.
type Deps struct {
	Scorer   StaticScorer
	Analyzer DynamicAnalyzer
	Cache    ResultCache
	Events   Publisher
	Metrics  MetricsRecorder
	Logger   logging.Logger
	Now      func() time.Time
}

// Engine is the decision orchestrator. Safe for concurrent use.
type Engine struct {
	scorer   StaticScorer
	analyzer DynamicAnalyzer
	cache    ResultCache
	events   Publisher
	metrics  MetricsRecorder
	logger   logging.Logger
	now      func() time.Time

	cacheTTL     time.Duration
	probeEnabled bool

	flight singleflight.Group
}

// NewEngine builds an orchestrator over the two stages.
func NewEngine(deps Deps, cacheCfg config.CacheConfig, probeCfg config.ProbeConfig) (*Engine, error) {
	if deps.Scorer == nil {
		return nil, apperrors.New(apperrors.ErrCodeInternal, "engine requires a static scorer")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Cache == nil {
		deps.Cache = NewMemoryCache(deps.Now)
	}
	if deps.Events == nil {
		deps.Events = NopPublisher{}
	}
	if deps.Metrics == nil {
		deps.Metrics = NopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	return &Engine{
		scorer:       deps.Scorer,
		analyzer:     deps.Analyzer,
		cache:        deps.Cache,
		events:       deps.Events,
		metrics:      deps.Metrics,
		logger:       deps.Logger.Named("assessment"),
		now:          deps.Now,
		cacheTTL:     cacheCfg.TTL,
		probeEnabled: probeCfg.Enabled,
	}, nil
}

// Assess runs the full decision flow for one artifact: validation,
// cache lookup, deduplicated two-stage computation, cache write.
// Concurrent requests for the same fingerprint share a single
// computation and receive identical results. A caller that gives up
// does not abort the shared computation; the result still lands in the
// cache for the next request.
func (e *Engine) Assess(ctx context.Context, req artifact.RiskRequest) (*Response, error) {
	start := e.now()
	requestID := uuid.NewString()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	normalized, err := artifact.ParseType(string(req.Type))
	if err != nil {
		return nil, err
	}
	req.Type = normalized

	if req.Type == artifact.TypeQR {
		resp, err := e.assessQR(ctx, requestID, start, req)
		return resp, err
	}

	resp, err := e.assess(ctx, requestID, start, req)
	if err == nil {
		e.metrics.RecordAssessment(string(resp.ArtifactType), resp.Verdict.String(), resp.Cached, e.now().Sub(start))
	}
	return resp, err
}

func (e *Engine) assess(ctx context.Context, requestID string, start time.Time, req artifact.RiskRequest) (*Response, error) {
	fingerprint := artifact.Fingerprint(req.Type, req.CanonicalValue)

	entry, err := e.cache.Get(ctx, fingerprint)
	switch {
	case err == nil:
		e.metrics.RecordCacheLookup(true)
		return responseFromEntry(requestID, req.Type, entry, true, e.now().Sub(start)), nil
	case apperrors.IsCode(err, apperrors.ErrCodeNotFound):
		e.metrics.RecordCacheLookup(false)
	default:
		// A broken cache degrades to recomputation, never to failure.
		e.metrics.RecordCacheLookup(false)
		e.logger.Warn("cache read failed",
			logging.String("fingerprint", fingerprint),
			logging.Err(err))
	}

	// The computation is detached from the caller's context so that
	// one impatient caller cannot abort work other callers are waiting
	// on, and so the result is cached even if every caller has gone.
	computeCtx := context.WithoutCancel(ctx)
	ch := e.flight.DoChan(fingerprint, func() (interface{}, error) {
		return e.compute(computeCtx, fingerprint, req)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		computed := res.Val.(*artifact.CacheEntry)
		return responseFromEntry(requestID, req.Type, computed, false, e.now().Sub(start)), nil
	case <-ctx.Done():
		return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout, "assessment abandoned by caller")
	}
}

// compute runs both stages and persists the decision. It is executed
// at most once per fingerprint at a time.
func (e *Engine) compute(ctx context.Context, fingerprint string, req artifact.RiskRequest) (*artifact.CacheEntry, error) {
	stageStart := e.now()
	stage1, err := e.scorer.Score(ctx, req)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordStageDuration("static", e.now().Sub(stageStart))

	stage2 := e.maybeProbe(ctx, req, &stage1)

	verdict, score, reasons := artifact.Merge(stage1, stage2)

	if req.Type == artifact.TypeMessage {
		verdict, score, reasons = e.escalateEmbeddedLinks(ctx, req, verdict, score, reasons)
	}

	now := e.now()
	entry := &artifact.CacheEntry{
		Fingerprint:  fingerprint,
		FinalVerdict: verdict,
		FinalScore:   score,
		Reasons:      reasons,
		Stage1:       stage1,
		Stage2:       stage2,
		ComputedAt:   now,
		ExpiresAt:    now.Add(e.cacheTTL),
	}

	if err := e.cache.Put(ctx, entry); err != nil {
		e.logger.Warn("cache write failed",
			logging.String("fingerprint", fingerprint),
			logging.Err(err))
	}
	e.publish(ctx, req, entry)

	e.logger.Info("assessment computed",
		logging.String("fingerprint", fingerprint),
		logging.String("artifact_type", string(req.Type)),
		logging.String("verdict", verdict.String()),
		logging.Float64("score", score),
		logging.Bool("probed", stage2 != nil))

	return entry, nil
}

func (e *Engine) publish(ctx context.Context, req artifact.RiskRequest, entry *artifact.CacheEntry) {
	event := AssessmentEvent{
		EventID:      uuid.NewString(),
		Fingerprint:  entry.Fingerprint,
		ArtifactType: req.Type,
		Verdict:      entry.FinalVerdict,
		Score:        entry.FinalScore,
		Reasons:      entry.Reasons,
		Probed:       entry.Stage2 != nil,
		ComputedAt:   entry.ComputedAt,
	}
	if err := e.events.Publish(ctx, event); err != nil {
		e.logger.Warn("event publish failed",
			logging.String("fingerprint", entry.Fingerprint),
			logging.Err(err))
	}
}

// maybeProbe runs the dynamic stage when the static verdict calls for
// it. A probe failure is absorbed: the static result stands, with a
// degraded-service reason appended.
func (e *Engine) maybeProbe(ctx context.Context, req artifact.RiskRequest, stage1 *artifact.StaticScore) *artifact.BehavioralFindings {
	if stage1.Verdict == artifact.VerdictOK {
		return nil
	}
	if !e.probeEnabled || e.analyzer == nil || !e.analyzer.Supports(req.Type) {
		return nil
	}

	stageStart := e.now()
	findings, err := e.analyzer.Analyze(ctx, req)
	e.metrics.RecordStageDuration("dynamic", e.now().Sub(stageStart))
	if err != nil {
		e.metrics.RecordProbe(probeOutcome(err))
		e.logger.Warn("dynamic analysis failed, static verdict retained",
			logging.String("artifact_type", string(req.Type)),
			logging.Err(err))
		stage1.Reasons = append(stage1.Reasons, "dynamic analysis unavailable, verdict based on static stage only")
		return nil
	}
	e.metrics.RecordProbe("completed")
	return findings
}

func probeOutcome(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeProbeTimeout:
		return "timeout"
	case apperrors.ErrCodeProbeUnreachable:
		return "unreachable"
	case apperrors.ErrCodeProbeRender:
		return "render_error"
	case apperrors.ErrCodeProbeUnsupported:
		return "unsupported"
	default:
		return "error"
	}
}

// escalateEmbeddedLinks assesses URLs found inside a message and lets
// their verdicts raise, never lower, the message's own verdict.
func (e *Engine) escalateEmbeddedLinks(ctx context.Context, req artifact.RiskRequest, verdict artifact.Verdict, score float64, reasons []string) (artifact.Verdict, float64, []string) {
	mf := featextract.ExtractMessage(req.CanonicalValue, nil)
	urls := mf.URLs
	if len(urls) > maxEmbeddedLinks {
		urls = urls[:maxEmbeddedLinks]
	}
	for _, target := range urls {
		sub, err := e.assess(ctx, uuid.NewString(), e.now(), artifact.RiskRequest{
			Type:           artifact.TypeLink,
			CanonicalValue: target,
		})
		if err != nil {
			e.logger.Warn("embedded link assessment failed",
				logging.String("url", target),
				logging.Err(err))
			continue
		}
		if sub.Verdict > verdict {
			verdict = sub.Verdict
		}
		if sub.Score > score {
			score = sub.Score
		}
		if sub.Verdict != artifact.VerdictOK {
			reasons = append(reasons, fmt.Sprintf("embedded link %s assessed %s", target, sub.Verdict))
		}
	}
	return verdict, score, artifact.DedupeReasons(reasons)
}

// assessQR reduces a decoded QR payload to a scorable artifact and
// assesses that. Encrypted payment QRs carry no clickable content and
// resolve OK immediately.
func (e *Engine) assessQR(ctx context.Context, requestID string, start time.Time, req artifact.RiskRequest) (*Response, error) {
	reduced, err := featextract.ReduceQRPayload(req.CanonicalValue)
	if err != nil {
		if reduced.Kind == featextract.PayloadProtectedPayment {
			now := e.now()
			return &Response{
				RequestID:    requestID,
				ArtifactType: artifact.TypeQR,
				Fingerprint:  artifact.Fingerprint(artifact.TypeQR, req.CanonicalValue),
				Verdict:      artifact.VerdictOK,
				Score:        0,
				Reasons:      []string{"encrypted payment QR, carries no clickable content"},
				Stage1: StageOneResult{
					Verdict: artifact.VerdictOK.String(),
					Reasons: []string{"encrypted payment QR"},
				},
				ComputedAt:     now,
				ResponseTimeMS: now.Sub(start).Milliseconds(),
			}, nil
		}
		return nil, err
	}

	resp, err := e.assess(ctx, requestID, start, artifact.RiskRequest{
		Type:           reduced.Type,
		CanonicalValue: reduced.Value,
	})
	if err != nil {
		return nil, err
	}
	e.metrics.RecordAssessment(string(artifact.TypeQR), resp.Verdict.String(), resp.Cached, e.now().Sub(start))
	return resp, nil
}
