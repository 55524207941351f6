package featextract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/scamshield/riskengine/internal/domain/artifact"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// PayloadKind classifies the decoded content of a QR code by format
// alone. Domain names never influence classification: every URL goes
// through scoring, whitelisted or not.
type PayloadKind string

const (
	PayloadUPI              PayloadKind = "upi"
	PayloadURL              PayloadKind = "url"
	PayloadVPA              PayloadKind = "vpa"
	PayloadProtectedPayment PayloadKind = "protected_payment"
	PayloadSystemIntent     PayloadKind = "system_intent"
	PayloadText             PayloadKind = "text"
	PayloadUnknown          PayloadKind = "unknown"
)

var bareVPAPattern = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,}@[a-zA-Z0-9.\-_]{2,}$`)

var encryptedPaymentKeywords = []string{"bhim", "phonepe", "paytmmp", "paytmqr", "bharatpe", "gpay"}

var systemIntentPrefixes = []string{"geo:", "tel:", "mailto:", "sms:", "wifi:", "begin:vcard", "intent://"}

// ClassifyPayload identifies the kind of a decoded QR payload.
func ClassifyPayload(data string) PayloadKind {
	lower := strings.ToLower(data)

	// EMVCo encrypted payment QRs carry a fixed numeric prefix.
	if strings.HasPrefix(data, "00020101") || strings.HasPrefix(data, "00020201") {
		return PayloadProtectedPayment
	}
	if !strings.HasPrefix(lower, "http") {
		for _, kw := range encryptedPaymentKeywords {
			if strings.Contains(lower, kw) {
				return PayloadProtectedPayment
			}
		}
	}
	if strings.HasPrefix(lower, "upi://") {
		return PayloadUPI
	}
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return PayloadURL
	}
	if bareVPAPattern.MatchString(data) {
		return PayloadVPA
	}
	for _, prefix := range systemIntentPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return PayloadSystemIntent
		}
	}
	stripped := strings.NewReplacer(" ", "", "-", "", "_", "", "\n", "").Replace(data)
	if len(data) < 200 && isAlnum(stripped) {
		return PayloadText
	}
	return PayloadUnknown
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// ReducedPayload is a QR payload rewritten as one of the directly
// scorable artifact types.
type ReducedPayload struct {
	Kind  PayloadKind
	Type  artifact.Type
	Value string
}

// ReduceQRPayload maps a decoded QR payload onto a scorable artifact.
// UPI intents and URLs score as links, bare VPAs as VPAs, and free
// text as a message. Protected payment QRs and system intents carry no
// scorable content and are reported as unsupported.
func ReduceQRPayload(data string) (ReducedPayload, error) {
	kind := ClassifyPayload(data)
	switch kind {
	case PayloadUPI, PayloadURL:
		return ReducedPayload{Kind: kind, Type: artifact.TypeLink, Value: data}, nil
	case PayloadVPA:
		return ReducedPayload{Kind: kind, Type: artifact.TypeVPA, Value: data}, nil
	case PayloadText:
		return ReducedPayload{Kind: kind, Type: artifact.TypeMessage, Value: data}, nil
	default:
		return ReducedPayload{Kind: kind}, apperrors.Newf(apperrors.ErrCodeUnsupportedArtifact,
			"QR payload kind %q cannot be scored", kind)
	}
}

// ExtractUPIVPA pulls the payee address out of a upi:// intent, if any.
func ExtractUPIVPA(upiIntent string) (string, bool) {
	idx := strings.Index(upiIntent, "?")
	if idx < 0 {
		return "", false
	}
	params, err := url.ParseQuery(upiIntent[idx+1:])
	if err != nil {
		return "", false
	}
	pa := params.Get("pa")
	return pa, pa != ""
}
