// Package featextract turns raw artifacts into the named feature vectors
// consumed by the static scoring models. Feature names are stable: model
// artifacts reference them by name, so renaming a feature is a breaking
// change for every trained model on disk.
package featextract

import (
	"math"
)

// FeatureVector maps feature names to numeric values. Missing features
// are treated as 0 by the models.
type FeatureVector map[string]float64

// shannonEntropy returns the Shannon entropy of s in bits per character.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	var ent float64
	for _, c := range counts {
		p := float64(c) / float64(total)
		ent -= p * math.Log2(p)
	}
	return ent
}

// normalizedEntropy scales Shannon entropy by the maximum possible
// entropy for an alphanumeric alphabet, yielding a value in [0, 1).
func normalizedEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	return shannonEntropy(s) / math.Log2(62)
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
