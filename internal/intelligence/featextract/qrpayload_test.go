package featextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/riskengine/internal/domain/artifact"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

func TestClassifyPayload(t *testing.T) {
	tests := []struct {
		name string
		data string
		want PayloadKind
	}{
		{"upi intent", "upi://pay?pa=shop@oksbi&am=100", PayloadUPI},
		{"https url", "https://example.com/page", PayloadURL},
		{"http url", "http://example.com", PayloadURL},
		{"bare vpa", "merchant@okicici", PayloadVPA},
		{"emvco", "000201010212abcdef", PayloadProtectedPayment},
		{"paytm app qr", "paytmqr2810050501abcdef", PayloadProtectedPayment},
		{"wifi", "WIFI:T:WPA;S:homenet;P:secret;;", PayloadSystemIntent},
		{"tel", "tel:+919876543210", PayloadSystemIntent},
		{"mailto", "mailto:someone@example.com", PayloadSystemIntent},
		{"geo", "geo:12.97,77.59", PayloadSystemIntent},
		{"vcard", "BEGIN:VCARD\nVERSION:3.0\nEND:VCARD", PayloadSystemIntent},
		{"plain text", "TRACK-1234-5678", PayloadText},
		{"unknown binary-ish", "\x01\x02???//", PayloadUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPayload(tt.data))
		})
	}
}

func TestReduceQRPayload(t *testing.T) {
	rp, err := ReduceQRPayload("upi://pay?pa=shop@oksbi")
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeLink, rp.Type)
	assert.Equal(t, "upi://pay?pa=shop@oksbi", rp.Value)

	rp, err = ReduceQRPayload("https://example.com")
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeLink, rp.Type)

	rp, err = ReduceQRPayload("merchant@okicici")
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeVPA, rp.Type)

	rp, err = ReduceQRPayload("ORDER 4521")
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeMessage, rp.Type)
}

func TestReduceQRPayload_Unsupported(t *testing.T) {
	_, err := ReduceQRPayload("tel:+919876543210")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnsupportedArtifact, apperrors.CodeOf(err))

	_, err = ReduceQRPayload("00020101021226abcdef")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnsupportedArtifact, apperrors.CodeOf(err))
}

func TestExtractUPIVPA(t *testing.T) {
	vpa, ok := ExtractUPIVPA("upi://pay?pa=shop@oksbi&am=10")
	require.True(t, ok)
	assert.Equal(t, "shop@oksbi", vpa)

	_, ok = ExtractUPIVPA("upi://pay")
	assert.False(t, ok)

	_, ok = ExtractUPIVPA("upi://pay?am=10")
	assert.False(t, ok)
}
