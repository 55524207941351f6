package featextract

import (
	"strings"
	"unicode"

	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// VPAInfo is the parsed form of a virtual payment address.
type VPAInfo struct {
	LocalPart string
	Provider  string
}

// ParseVPA splits a VPA into its local part and provider handle. The
// provider is lowercased; the local part keeps its original casing.
func ParseVPA(vpa string) (VPAInfo, error) {
	m := vpaPattern.FindStringSubmatch(strings.TrimSpace(vpa))
	if m == nil {
		return VPAInfo{}, apperrors.Newf(apperrors.ErrCodeInvalidInput, "malformed VPA: %q", vpa)
	}
	return VPAInfo{LocalPart: m[1], Provider: strings.ToLower(m[2])}, nil
}

// ExtractVPA derives the feature vector used by the static VPA models.
// The provider allowlist is supplied by the caller so that operators
// can extend it through configuration.
func ExtractVPA(vpa string, allowedProviders map[string]bool) (FeatureVector, error) {
	f := make(FeatureVector, 12)

	info, err := ParseVPA(vpa)
	if err != nil {
		// An unparseable VPA still produces a (maximally suspicious)
		// vector so the models can score it rather than erroring out.
		f["vpa_format_valid"] = 0.0
		f["vpa_provider_allow"] = 0.0
		f["vpa_entropy"] = 0.0
		f["local_length"] = 0.0
		f["short_handle"] = 1.0
		f["many_digits"] = 0.0
		f["all_digits"] = 0.0
		f["repeated_chars"] = 0.0
		f["punct_density"] = 0.0
		return f, nil
	}

	local := info.LocalPart
	f["vpa_format_valid"] = 1.0
	f["vpa_provider_allow"] = boolFeature(allowedProviders[info.Provider])
	f["vpa_entropy"] = normalizedEntropy(local)
	f["local_length"] = float64(len(local))
	f["short_handle"] = boolFeature(len(local) <= 3)

	digits, letters, punct := 0, 0, 0
	for _, r := range local {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		case r == '.' || r == '-' || r == '_':
			punct++
		}
	}
	n := len(local)
	if n == 0 {
		n = 1
	}
	f["many_digits"] = boolFeature(digits >= max(3, int(0.4*float64(n))))
	f["all_digits"] = boolFeature(letters == 0 && digits > 0)
	f["punct_density"] = float64(punct) / float64(n)

	repeated := false
	for _, r := range local {
		if strings.Count(local, string(r)) > max(3, len(local)/4) {
			repeated = true
			break
		}
	}
	f["repeated_chars"] = boolFeature(repeated)

	return f, nil
}
