package assessment

import (
	"time"

	"github.com/scamshield/riskengine/internal/domain/artifact"
)

// StageOneResult is the static-stage section of a response.
type StageOneResult struct {
	ClassifierProbability float64  `json:"classifier_probability"`
	AnomalyScore          float64  `json:"anomaly_score"`
	CombinedScore         float64  `json:"combined_score"`
	Verdict               string   `json:"verdict"`
	Reasons               []string `json:"reasons"`
}

// StageTwoResult is the dynamic-stage section of a response. Absent
// when the probe did not run.
type StageTwoResult struct {
	Indicators   map[string]bool `json:"indicators"`
	DynamicScore float64         `json:"dynamic_score"`
	Verdict      string          `json:"verdict"`
	Reasons      []string        `json:"reasons"`
}

// Response is the complete assessment answer returned to callers.
type Response struct {
	RequestID    string        `json:"request_id"`
	ArtifactType artifact.Type `json:"artifact_type"`
	Fingerprint  string        `json:"fingerprint"`

	Verdict artifact.Verdict `json:"verdict"`
	Score   float64          `json:"score"`
	Reasons []string         `json:"reasons"`

	Stage1 StageOneResult  `json:"stage1"`
	Stage2 *StageTwoResult `json:"stage2,omitempty"`

	Cached         bool      `json:"cached"`
	ComputedAt     time.Time `json:"computed_at"`
	ResponseTimeMS int64     `json:"response_time_ms"`
}

// responseFromEntry projects a cache entry into the response shape.
func responseFromEntry(requestID string, artifactType artifact.Type, entry *artifact.CacheEntry, cached bool, elapsed time.Duration) *Response {
	resp := &Response{
		RequestID:    requestID,
		ArtifactType: artifactType,
		Fingerprint:  entry.Fingerprint,
		Verdict:      entry.FinalVerdict,
		Score:        entry.FinalScore,
		Reasons:      entry.Reasons,
		Stage1: StageOneResult{
			ClassifierProbability: entry.Stage1.ClassifierProbability,
			AnomalyScore:          entry.Stage1.AnomalyScore,
			CombinedScore:         entry.Stage1.CombinedScore,
			Verdict:               entry.Stage1.Verdict.String(),
			Reasons:               entry.Stage1.Reasons,
		},
		Cached:         cached,
		ComputedAt:     entry.ComputedAt,
		ResponseTimeMS: elapsed.Milliseconds(),
	}
	if entry.Stage2 != nil {
		resp.Stage2 = &StageTwoResult{
			Indicators:   entry.Stage2.Indicators,
			DynamicScore: entry.Stage2.DynamicScore,
			Verdict:      entry.Stage2.Verdict.String(),
			Reasons:      entry.Stage2.Reasons,
		}
	}
	return resp
}
