package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/scamshield/riskengine/internal/application/assessment"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// maxRequestBody bounds assessment request bodies. Message text and QR
// payloads fit comfortably; anything bigger is abuse.
const maxRequestBody = 64 * 1024

// Assessor is the application service behind the assess endpoint.
type Assessor interface {
	Assess(ctx context.Context, req artifact.RiskRequest) (*assessment.Response, error)
}

// AssessRequest is the JSON body of POST /api/v1/assess.
type AssessRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// AssessHandler serves assessment requests.
type AssessHandler struct {
	engine Assessor
	logger logging.Logger
}

func NewAssessHandler(engine Assessor, log logging.Logger) *AssessHandler {
	return &AssessHandler{
		engine: engine,
		logger: log.Named("assess"),
	}
}

// Assess handles POST /api/v1/assess.
func (h *AssessHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var body AssessRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "malformed request body"))
		return
	}

	resp, err := h.engine.Assess(r.Context(), artifact.RiskRequest{
		Type:           artifact.Type(body.Type),
		CanonicalValue: body.Value,
	})
	if err != nil {
		if !apperrors.IsInvalidInput(err) {
			h.logger.Error("assessment failed",
				logging.String("artifact_type", body.Type),
				logging.Err(err))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
