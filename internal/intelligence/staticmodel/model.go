// Package staticmodel implements the first assessment stage: trained
// model artifacts loaded from disk at startup, combined with list and
// rule checks, producing a static risk score without any network I/O.
package staticmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/scamshield/riskengine/internal/intelligence/featextract"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// Classifier produces a fraud probability in [0, 1] from a feature
// vector.
type Classifier interface {
	Probability(features featextract.FeatureVector) float64
}

// AnomalyDetector produces an anomaly score in [0, 1] from a feature
// vector, where higher means further from the trained population.
type AnomalyDetector interface {
	Score(features featextract.FeatureVector) float64
}

// logisticModel is a logistic regression exported from the training
// pipeline as a JSON artifact. Features absent from the vector
// contribute zero.
type logisticModel struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

func (m *logisticModel) Probability(features featextract.FeatureVector) float64 {
	z := m.Bias
	for name, w := range m.Weights {
		z += w * features[name]
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

// centroidModel approximates the trained anomaly detector: per-feature
// center and scale from the training distribution, with squared
// z-distance squashed into [0, 1).
type centroidModel struct {
	Center map[string]float64 `json:"center"`
	Scale  map[string]float64 `json:"scale"`
	Alpha  float64            `json:"alpha"`
}

func (m *centroidModel) Score(features featextract.FeatureVector) float64 {
	if len(m.Center) == 0 {
		return 0
	}
	var sum float64
	for name, center := range m.Center {
		scale := m.Scale[name]
		if scale <= 0 {
			scale = 1
		}
		z := (features[name] - center) / scale
		sum += z * z
	}
	mean := sum / float64(len(m.Center))
	return 1.0 - math.Exp(-m.Alpha*mean)
}

// LoadClassifier reads and validates a classifier artifact. Errors are
// fatal at startup: the engine never serves traffic without models.
func LoadClassifier(path string) (Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeModelLoad,
			fmt.Sprintf("failed to read classifier artifact %s", path))
	}
	var m logisticModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeModelArtifact,
			fmt.Sprintf("failed to parse classifier artifact %s", path))
	}
	if len(m.Weights) == 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeModelIncomplete,
			"classifier artifact %s has no weights", path)
	}
	return &m, nil
}

// LoadAnomalyDetector reads and validates an anomaly detector artifact.
func LoadAnomalyDetector(path string) (AnomalyDetector, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeModelLoad,
			fmt.Sprintf("failed to read anomaly artifact %s", path))
	}
	var m centroidModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeModelArtifact,
			fmt.Sprintf("failed to parse anomaly artifact %s", path))
	}
	if len(m.Center) == 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeModelIncomplete,
			"anomaly artifact %s has no center", path)
	}
	if m.Alpha <= 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeModelIncomplete,
			"anomaly artifact %s has non-positive alpha", path)
	}
	return &m, nil
}
