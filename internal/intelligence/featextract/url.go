package featextract

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

var suspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".gq", ".pw", ".cc",
	".top", ".xyz", ".club", ".online", ".site",
}

var brandNames = []string{
	"google", "amazon", "paytm", "phonepe", "gpay",
	"axis", "hdfc", "icici", "sbi", "kotak", "bank",
}

var officialDomains = []string{
	"google.com", "google.co.in",
	"amazon.in", "amazon.com",
	"paytm.com",
	"phonepe.com",
	"axisbank.com", "axisbank.co.in",
	"hdfcbank.com",
	"icicibank.com",
	"onlinesbi.sbi", "onlinesbi.com",
	"kotak.com", "kotakbank.com",
}

var urlShorteners = []string{"bit.ly", "tinyurl", "goo.gl", "t.co"}

var domainRiskKeywords = []string{
	"verify", "secure", "kyc", "update", "confirm", "login", "signin", "account",
}

var vpaPattern = regexp.MustCompile(`^([a-zA-Z0-9.\-_]{2,64})@([a-zA-Z0-9.\-_]{2,64})$`)

var knownVPAProviders = map[string]bool{
	"oksbi": true, "okhdfcbank": true, "okicici": true, "okaxis": true,
	"paytm": true, "ybl": true, "phonepe": true, "gpay": true,
}

// ExtractURL derives the full feature vector used by the static link
// models from a raw URL string. The returned vector always carries the
// same set of feature names regardless of the input.
func ExtractURL(rawURL string) (FeatureVector, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFeatureExtraction, "failed to parse URL")
	}

	domain := strings.ToLower(parsed.Host)
	query := strings.ToLower(parsed.RawQuery)
	fullURL := strings.ToLower(rawURL)

	f := make(FeatureVector, 40)

	// Domain age is a heuristic stand-in: no WHOIS lookups at scoring time.
	domainAge := 100.0
	for _, kw := range domainRiskKeywords {
		if strings.Contains(domain, kw) {
			domainAge = 10.0
			break
		}
	}

	tldRisk := 0.2
	for _, tld := range suspiciousTLDs {
		if strings.Contains(domain, tld) {
			tldRisk = 0.8
			break
		}
	}
	f["tld_risk"] = tldRisk

	f["url_length"] = float64(len(rawURL))
	f["subdomain_depth"] = float64(strings.Count(domain, "."))

	hasBrand := false
	for _, brand := range brandNames {
		if strings.Contains(domain, brand) {
			hasBrand = true
			break
		}
	}
	isOfficial := false
	for _, official := range officialDomains {
		if strings.Contains(domain, official) {
			isOfficial = true
			break
		}
	}

	// A brand name on a non-official domain is the strongest single
	// phishing signal the static models see.
	switch {
	case hasBrand && !isOfficial:
		f["brand_lev_distance"] = 1.0
		domainAge = 5.0
	case isOfficial:
		f["brand_lev_distance"] = 0.0
		domainAge = 3650.0
	default:
		f["brand_lev_distance"] = 999.0
	}
	f["domain_age_days"] = domainAge

	f["ssl_valid"] = boolFeature(parsed.Scheme == "https")
	f["is_http"] = boolFeature(parsed.Scheme == "http")

	f["query_entropy"] = shannonEntropy(query)
	f["redirect_count"] = 0.0

	f["kw_kyc"] = boolFeature(strings.Contains(fullURL, "kyc"))
	f["kw_verify"] = boolFeature(strings.Contains(fullURL, "verify"))
	f["kw_bonus"] = boolFeature(strings.Contains(fullURL, "bonus"))

	f["upi_intent_pay"] = boolFeature(strings.Contains(fullURL, "upi://pay"))
	f["upi_intent_collect"] = boolFeature(strings.Contains(fullURL, "upi://collect"))

	params := parsed.Query()
	f["upi_pa_present"] = boolFeature(params.Has("pa"))
	f["upi_am_present"] = boolFeature(params.Has("am") || params.Has("amount"))

	amount := 0.0
	if v := params.Get("am"); v != "" {
		if parsedAmount, err := strconv.ParseFloat(v, 64); err == nil {
			amount = parsedAmount
		}
	} else if v := params.Get("amount"); v != "" {
		if parsedAmount, err := strconv.ParseFloat(v, 64); err == nil {
			amount = parsedAmount
		}
	}
	f["upi_amount"] = amount

	paValue := params.Get("pa")
	if m := vpaPattern.FindStringSubmatch(paValue); m != nil {
		f["vpa_format_valid"] = 1.0
		f["vpa_provider_allow"] = boolFeature(knownVPAProviders[strings.ToLower(m[2])])
		f["vpa_entropy"] = normalizedEntropy(m[1])
	} else {
		f["vpa_format_valid"] = 0.0
		f["vpa_provider_allow"] = 0.0
		f["vpa_entropy"] = 0.0
	}

	f["qr_present"] = 0.0
	f["qr_param_missing_count"] = 0.0
	shortener := false
	for _, s := range urlShorteners {
		if strings.Contains(domain, s) {
			shortener = true
			break
		}
	}
	f["qr_from_shortener"] = boolFeature(shortener)

	// Engineered features derived from the base set.
	f["log_domain_age_days"] = math.Log1p(math.Max(0, f["domain_age_days"]))
	f["log_upi_amount"] = math.Log1p(math.Max(0, f["upi_amount"]))
	f["log_url_length"] = math.Log1p(math.Max(0, f["url_length"]))
	f["log_query_entropy"] = math.Log1p(math.Max(0, f["query_entropy"]))

	f["is_new_domain_30"] = boolFeature(f["domain_age_days"] <= 30)
	f["is_new_domain_60"] = boolFeature(f["domain_age_days"] <= 60)
	f["risky_tld_flag"] = boolFeature(f["tld_risk"] >= 0.6)
	f["brand_impersonation"] = boolFeature(hasBrand && !isOfficial)
	f["long_url_flag"] = boolFeature(f["url_length"] >= 120)
	f["deep_subdomain_flag"] = boolFeature(f["subdomain_depth"] >= 3)
	f["http_or_bad_ssl"] = boolFeature(f["is_http"] == 1.0 || f["ssl_valid"] == 0.0)
	f["has_kyc_or_verify"] = boolFeature(f["kw_kyc"] == 1.0 || f["kw_verify"] == 1.0)
	f["small_amount_verification"] = boolFeature(f["upi_am_present"] == 1.0 && f["upi_amount"] <= 10)
	f["pay_intent_no_collect"] = boolFeature(f["upi_intent_pay"] == 1.0 && f["upi_intent_collect"] == 0.0)
	f["kyc_on_new_domain"] = boolFeature(f["is_new_domain_60"] == 1.0 && f["has_kyc_or_verify"] == 1.0)

	return f, nil
}
