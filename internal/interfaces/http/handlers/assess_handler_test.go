package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/riskengine/internal/application/assessment"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/testutil"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

type stubAssessor struct {
	resp *assessment.Response
	err  error
	got  artifact.RiskRequest
}

func (s *stubAssessor) Assess(_ context.Context, req artifact.RiskRequest) (*assessment.Response, error) {
	s.got = req
	return s.resp, s.err
}

func postAssess(t *testing.T, h *AssessHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assess", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Assess(rec, req)
	return rec
}

func TestAssessHandler_Success(t *testing.T) {
	stub := &stubAssessor{
		resp: &assessment.Response{
			RequestID:    "req-1",
			ArtifactType: artifact.TypeLink,
			Fingerprint:  "abc123",
			Verdict:      artifact.VerdictBlock,
			Score:        0.91,
			Reasons:      []string{"matches known scam pattern"},
			ComputedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	h := NewAssessHandler(stub, testutil.NewMockLogger())

	rec := postAssess(t, h, `{"type":"link","value":"https://paytm-kyc-verify.tk/login"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var resp assessment.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, artifact.VerdictBlock, resp.Verdict)
	assert.Equal(t, "abc123", resp.Fingerprint)

	assert.Equal(t, artifact.Type("link"), stub.got.Type)
	assert.Equal(t, "https://paytm-kyc-verify.tk/login", stub.got.CanonicalValue)
}

func TestAssessHandler_MalformedBody(t *testing.T) {
	stub := &stubAssessor{}
	h := NewAssessHandler(stub, testutil.NewMockLogger())

	rec := postAssess(t, h, `{"type":"link",`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.ErrCodeInvalidInput), body["code"])
	assert.Empty(t, stub.got.Type, "engine must not be called on malformed input")
}

func TestAssessHandler_UnknownField(t *testing.T) {
	h := NewAssessHandler(&stubAssessor{}, testutil.NewMockLogger())

	rec := postAssess(t, h, `{"type":"link","value":"https://x.example","extra":true}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssessHandler_EngineErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apperrors.ErrorCode
	}{
		{
			name:       "invalid input",
			err:        apperrors.New(apperrors.ErrCodeInvalidInput, "empty artifact value"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeInvalidInput,
		},
		{
			name:       "unsupported artifact",
			err:        apperrors.New(apperrors.ErrCodeUnsupportedArtifact, "system intent payloads are not assessable"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.ErrCodeUnsupportedArtifact,
		},
		{
			name:       "timeout",
			err:        apperrors.New(apperrors.ErrCodeTimeout, "assessment abandoned"),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   apperrors.ErrCodeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAssessHandler(&stubAssessor{err: tt.err}, testutil.NewMockLogger())

			rec := postAssess(t, h, `{"type":"link","value":"https://x.example"}`)

			require.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(tt.wantCode), body["code"])
		})
	}
}

func TestAssessHandler_OpaqueError(t *testing.T) {
	logger := testutil.NewMockLogger()
	h := NewAssessHandler(&stubAssessor{err: assertError("boom")}, logger)

	rec := postAssess(t, h, `{"type":"vpa","value":"merchant@oksbi"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.ErrCodeInternal), body["code"])
	assert.NotContains(t, body["message"], "boom", "internal details must not leak")

	assert.True(t, logger.HasMessage("error", "assessment failed"))
}

type assertError string

func (e assertError) Error() string { return string(e) }
