package artifact

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/scamshield/riskengine/pkg/errors"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"LINK", TypeLink, false},
		{"link", TypeLink, false},
		{" vpa ", TypeVPA, false},
		{"MESSAGE", TypeMessage, false},
		{"qr", TypeQR, false},
		{"", "", true},
		{"image", "", true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			assert.True(t, pkgerrors.IsInvalidInput(err))
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRiskRequest_Validate(t *testing.T) {
	valid := &RiskRequest{Type: TypeLink, CanonicalValue: "http://example.test"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		req  *RiskRequest
	}{
		{"nil request", nil},
		{"empty value", &RiskRequest{Type: TypeLink, CanonicalValue: ""}},
		{"whitespace value", &RiskRequest{Type: TypeVPA, CanonicalValue: "   "}},
		{"bad type", &RiskRequest{Type: "IMAGE", CanonicalValue: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, pkgerrors.IsInvalidInput(err))
		})
	}
}

func TestVerdict_Ordering(t *testing.T) {
	assert.True(t, VerdictOK < VerdictWarn)
	assert.True(t, VerdictWarn < VerdictBlock)

	assert.Equal(t, VerdictBlock, MaxVerdict(VerdictBlock, VerdictOK))
	assert.Equal(t, VerdictBlock, MaxVerdict(VerdictOK, VerdictBlock))
	assert.Equal(t, VerdictWarn, MaxVerdict(VerdictWarn, VerdictOK))
	assert.Equal(t, VerdictOK, MaxVerdict(VerdictOK, VerdictOK))
}

func TestVerdict_JSONRoundTrip(t *testing.T) {
	for _, v := range []Verdict{VerdictOK, VerdictWarn, VerdictBlock} {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var got Verdict
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, v, got)
	}

	var v Verdict
	assert.Error(t, json.Unmarshal([]byte(`"SEVERE"`), &v))
}

func TestVerdictForScore(t *testing.T) {
	const tOK, tBlock = 0.3, 0.75

	tests := []struct {
		score float64
		want  Verdict
	}{
		{0.0, VerdictOK},
		{0.3, VerdictOK}, // inclusive lower threshold
		{0.31, VerdictWarn},
		{0.5, VerdictWarn},
		{0.74, VerdictWarn},
		{0.75, VerdictBlock}, // inclusive upper threshold
		{1.0, VerdictBlock},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerdictForScore(tt.score, tOK, tBlock), "score %v", tt.score)
	}
}

func TestCacheEntry_Expired(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := &CacheEntry{ComputedAt: t0, ExpiresAt: t0.Add(24 * time.Hour)}

	assert.False(t, entry.Expired(t0))
	assert.False(t, entry.Expired(t0.Add(24*time.Hour-time.Nanosecond)))
	assert.True(t, entry.Expired(t0.Add(24*time.Hour)))
	assert.True(t, entry.Expired(t0.Add(25*time.Hour)))
}
