package assessment

import (
	"context"
	"time"

	"github.com/scamshield/riskengine/internal/domain/artifact"
)

// AssessmentEvent is the record published after every freshly computed
// decision. Cache hits do not publish: the event stream carries each
// decision exactly once.
type AssessmentEvent struct {
	EventID      string           `json:"event_id"`
	Fingerprint  string           `json:"fingerprint"`
	ArtifactType artifact.Type    `json:"artifact_type"`
	Verdict      artifact.Verdict `json:"verdict"`
	Score        float64          `json:"score"`
	Reasons      []string         `json:"reasons"`
	Probed       bool             `json:"probed"`
	ComputedAt   time.Time        `json:"computed_at"`
}

// Publisher delivers assessment events to downstream consumers.
// Publishing is best-effort from the orchestrator's point of view: a
// delivery failure never fails the assessment.
type Publisher interface {
	Publish(ctx context.Context, event AssessmentEvent) error
}

// NopPublisher discards all events. Used when the event stream is
// disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AssessmentEvent) error { return nil }
