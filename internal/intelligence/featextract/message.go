package featextract

import (
	"regexp"
	"strings"
)

var (
	messageURLPattern   = regexp.MustCompile(`https?://[^\s]+`)
	messagePhonePattern = regexp.MustCompile(`\b\d{10}\b|\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	messageUPIPattern   = regexp.MustCompile(`\b[\w.\-]+@[\w.\-]+\b`)
)

var urgencyWords = []string{"urgent", "immediately", "now", "asap", "today", "within"}

// MessageFeatures carries both the numeric vector for the models and
// the extracted URLs, which the orchestrator escalates into link
// assessments of their own.
type MessageFeatures struct {
	Vector      FeatureVector
	URLs        []string
	KeywordHits []string
}

// ExtractMessage derives features from free-form message text. The
// keyword list is operator-configurable; hits are reported back so the
// scorer can surface them as reasons.
func ExtractMessage(text string, keywords []string) MessageFeatures {
	lower := strings.ToLower(text)

	f := make(FeatureVector, 10)

	urls := messageURLPattern.FindAllString(text, -1)
	for i, u := range urls {
		urls[i] = strings.TrimRight(u, ".,;:!?)'\"")
	}
	f["has_url"] = boolFeature(len(urls) > 0)
	f["url_count"] = float64(len(urls))

	phones := messagePhonePattern.FindAllString(text, -1)
	f["has_phone"] = boolFeature(len(phones) > 0)
	f["phone_count"] = float64(len(phones))

	var hits []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits = append(hits, kw)
		}
	}
	f["keyword_hits"] = float64(len(hits))

	urgency := 0
	for _, w := range urgencyWords {
		if strings.Contains(lower, w) {
			urgency++
		}
	}
	f["urgency_count"] = float64(urgency)

	f["all_caps"] = boolFeature(len(text) > 20 && text == strings.ToUpper(text) && text != strings.ToLower(text))

	hasUPI := false
	for _, m := range messageUPIPattern.FindAllString(text, -1) {
		if strings.Contains(m, "@") && !strings.Contains(strings.ToLower(m), "@gmail") {
			hasUPI = true
			break
		}
	}
	f["has_upi"] = boolFeature(hasUPI)

	f["length"] = float64(len(text))
	f["word_count"] = float64(len(strings.Fields(text)))

	return MessageFeatures{Vector: f, URLs: urls, KeywordHits: hits}
}
