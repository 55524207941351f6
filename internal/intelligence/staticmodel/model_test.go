package staticmodel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/riskengine/internal/intelligence/featextract"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

func TestLoadClassifier(t *testing.T) {
	c, err := LoadClassifier(filepath.Join("testdata", "classifier.json"))
	require.NoError(t, err)

	// Empty vector scores near zero, a saturated vector scores high.
	low := c.Probability(featextract.FeatureVector{})
	high := c.Probability(featextract.FeatureVector{
		"brand_impersonation": 1, "has_kyc_or_verify": 1, "risky_tld_flag": 1,
		"http_or_bad_ssl": 1, "kyc_on_new_domain": 1, "is_new_domain_30": 1,
	})
	assert.Less(t, low, 0.1)
	assert.Greater(t, high, 0.9)
}

func TestLoadClassifier_Missing(t *testing.T) {
	_, err := LoadClassifier(filepath.Join("testdata", "nope.json"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeModelLoad, apperrors.CodeOf(err))
}

func TestLoadClassifier_Malformed(t *testing.T) {
	_, err := LoadClassifier(filepath.Join("testdata", "broken.json"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeModelArtifact, apperrors.CodeOf(err))
}

func TestLoadAnomalyDetector(t *testing.T) {
	a, err := LoadAnomalyDetector(filepath.Join("testdata", "anomaly.json"))
	require.NoError(t, err)

	nearCenter := a.Score(featextract.FeatureVector{
		"url_length": 42, "subdomain_depth": 1.2, "query_entropy": 2.1,
		"domain_age_days": 900, "local_length": 9, "vpa_entropy": 0.45,
		"word_count": 12, "length": 80,
	})
	farOut := a.Score(featextract.FeatureVector{
		"url_length": 500, "subdomain_depth": 6, "query_entropy": 7,
	})
	assert.Less(t, nearCenter, 0.2)
	assert.Greater(t, farOut, nearCenter)
	assert.LessOrEqual(t, farOut, 1.0)
}

func TestLoadAnomalyDetector_Missing(t *testing.T) {
	_, err := LoadAnomalyDetector(filepath.Join("testdata", "absent.json"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeModelLoad, apperrors.CodeOf(err))
}
