package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/riskengine/internal/application/assessment"
	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
)

type stubEngine struct {
	resp *assessment.Response
	err  error
	got  artifact.RiskRequest
}

func (s *stubEngine) Assess(_ context.Context, req artifact.RiskRequest) (*assessment.Response, error) {
	s.got = req
	return s.resp, s.err
}

func runCommand(t *testing.T, engine *stubEngine, args ...string) (string, error) {
	t.Helper()
	build := func(_ *config.Config, _ logging.Logger) (Assessor, error) {
		return engine, nil
	}
	cmd := NewRootCommand(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func blockResponse() *assessment.Response {
	return &assessment.Response{
		RequestID:    "r1",
		ArtifactType: artifact.TypeLink,
		Fingerprint:  "deadbeef",
		Verdict:      artifact.VerdictBlock,
		Score:        0.91,
		Reasons:      []string{"domain matches a known scam pattern"},
	}
}

func TestAssessCmd_TextOutput(t *testing.T) {
	engine := &stubEngine{resp: blockResponse()}

	out, err := runCommand(t, engine, "assess", "--link", "https://paytm-kyc-verify.tk/login")
	require.NoError(t, err)

	assert.Equal(t, artifact.TypeLink, engine.got.Type)
	assert.Equal(t, "https://paytm-kyc-verify.tk/login", engine.got.CanonicalValue)
	assert.Contains(t, out, "Verdict:     BLOCK")
	assert.Contains(t, out, "Score:       0.91")
	assert.Contains(t, out, "domain matches a known scam pattern")
}

func TestAssessCmd_JSONOutput(t *testing.T) {
	engine := &stubEngine{resp: blockResponse()}

	out, err := runCommand(t, engine, "assess", "--vpa", "merchant@oksbi", "--output", "json")
	require.NoError(t, err)

	var resp assessment.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, artifact.VerdictBlock, resp.Verdict)
	assert.Equal(t, "deadbeef", resp.Fingerprint)

	assert.Equal(t, artifact.TypeVPA, engine.got.Type)
}

func TestAssessCmd_QRPayloadFlag(t *testing.T) {
	engine := &stubEngine{resp: blockResponse()}

	_, err := runCommand(t, engine, "assess", "--qr-payload", "upi://pay?pa=merchant@oksbi&am=5")
	require.NoError(t, err)

	assert.Equal(t, artifact.TypeQR, engine.got.Type)
}

func TestAssessCmd_RequiresExactlyOneArtifact(t *testing.T) {
	engine := &stubEngine{resp: blockResponse()}

	_, err := runCommand(t, engine, "assess")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")

	_, err = runCommand(t, engine, "assess", "--link", "https://x.example", "--vpa", "m@oksbi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")
}

func TestAssessCmd_EngineErrorPropagates(t *testing.T) {
	engine := &stubEngine{err: context.DeadlineExceeded}

	_, err := runCommand(t, engine, "assess", "--message", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAssessOptions_Resolve(t *testing.T) {
	req, err := (&assessOptions{Message: "urgent KYC update"}).resolve()
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeMessage, req.Type)
	assert.Equal(t, "urgent KYC update", req.CanonicalValue)
}
