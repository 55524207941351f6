// Package artifact defines the core value types of the risk decision engine:
// artifact identities, verdicts, stage results, cache entries, and the
// deterministic merge rule that combines the two risk stages.
package artifact

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/scamshield/riskengine/pkg/errors"
)

// Type identifies the kind of user-submitted artifact under assessment.
type Type string

const (
	TypeLink    Type = "LINK"
	TypeVPA     Type = "VPA"
	TypeMessage Type = "MESSAGE"
	TypeQR      Type = "QR"
)

// ParseType normalises and validates a caller-supplied artifact type string.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeLink:
		return TypeLink, nil
	case TypeVPA:
		return TypeVPA, nil
	case TypeMessage:
		return TypeMessage, nil
	case TypeQR:
		return TypeQR, nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedArtifact, "unsupported artifact type %q", s)
	}
}

// RiskRequest is a single inbound assessment request.  It is created once per
// call, owned by the orchestrator for the request's lifetime, and never
// mutated after creation.
type RiskRequest struct {
	// Type is the artifact kind.  Immutable per request.
	Type Type `json:"type"`

	// CanonicalValue is the already-normalised artifact value.  Case and
	// whitespace normalisation happens upstream, not here.
	CanonicalValue string `json:"value"`

	// RawPayload optionally carries the undecoded original payload (e.g. the
	// raw QR text before reduction).
	RawPayload string `json:"raw_payload,omitempty"`
}

// Validate rejects requests the engine must not attempt to assess.  A
// rejected request is surfaced to the caller distinctly from a computed
// verdict.
func (r *RiskRequest) Validate() error {
	if r == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil request")
	}
	if _, err := ParseType(string(r.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(r.CanonicalValue) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "empty canonical value")
	}
	return nil
}

// StaticScore is the immutable result of Stage 1 static scoring.
type StaticScore struct {
	ClassifierProbability float64  `json:"classifier_probability"`
	AnomalyScore          float64  `json:"anomaly_score"`
	CombinedScore         float64  `json:"combined_score"`
	Verdict               Verdict  `json:"verdict"`
	Reasons               []string `json:"reasons"`
}

// BehavioralFindings is the result of a successful Stage 2 dynamic probe.
type BehavioralFindings struct {
	// Indicators are the named boolean behaviour flags observed by the probe
	// (e.g. "has_password_field", "mimics_banking_ui").
	Indicators map[string]bool `json:"indicators"`

	DynamicScore float64  `json:"dynamic_score"`
	Verdict      Verdict  `json:"verdict"`
	Reasons      []string `json:"reasons"`
}

// CacheEntry is the fully merged assessment stored per fingerprint.  It is
// written once per computation and overwritten, never mutated in place, on
// recomputation after expiry.
type CacheEntry struct {
	Fingerprint  string              `json:"fingerprint"`
	FinalVerdict Verdict             `json:"final_verdict"`
	FinalScore   float64             `json:"final_score"`
	Reasons      []string            `json:"reasons"`
	Stage1       StaticScore         `json:"stage1"`
	Stage2       *BehavioralFindings `json:"stage2,omitempty"`
	ComputedAt   time.Time           `json:"computed_at"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

// Expired reports whether the entry must no longer be served at instant now.
// The expiry bound is half-open: an entry computed at t0 with TTL T is valid
// in [t0, t0+T) and stale at exactly t0+T.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Verdict is the tri-state assessment outcome, totally ordered by severity.
type Verdict int

const (
	VerdictOK Verdict = iota
	VerdictWarn
	VerdictBlock
)

var verdictNames = map[Verdict]string{
	VerdictOK:    "OK",
	VerdictWarn:  "WARN",
	VerdictBlock: "BLOCK",
}

func (v Verdict) String() string {
	if s, ok := verdictNames[v]; ok {
		return s
	}
	return "UNKNOWN"
}

// MarshalJSON serialises Verdict as its name.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON deserialises a verdict name into Verdict.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, name := range verdictNames {
		if name == s {
			*v = k
			return nil
		}
	}
	return fmt.Errorf("unknown verdict: %s", s)
}

// MaxVerdict returns the more severe of two verdicts.
func MaxVerdict(a, b Verdict) Verdict {
	if b > a {
		return b
	}
	return a
}

// VerdictForScore maps a score in [0,1] to a verdict given the two decision
// thresholds: score <= tOK yields OK, score >= tBlock yields BLOCK, anything
// between is WARN.  Both stages of the engine use this mapping.
func VerdictForScore(score, tOK, tBlock float64) Verdict {
	switch {
	case score >= tBlock:
		return VerdictBlock
	case score <= tOK:
		return VerdictOK
	default:
		return VerdictWarn
	}
}
