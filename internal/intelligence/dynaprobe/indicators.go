package dynaprobe

import (
	"fmt"
	"net/url"
	"strings"
)

// Behavioral indicator names. These are the keys of the configured
// indicator weight table and of BehavioralFindings.Indicators.
const (
	IndicatorSuspiciousDomain     = "suspicious_domain"
	IndicatorPasswordField        = "has_password_field"
	IndicatorOTPField             = "has_otp_field"
	IndicatorBankingUI            = "mimics_banking_ui"
	IndicatorSensitiveInfo        = "requests_sensitive_info"
	IndicatorCrossDomainRedirect  = "redirects_to_different_domain"
	IndicatorSuspiciousJavascript = "suspicious_javascript"
	IndicatorConnectionFailed     = "connection_failed"
)

var probeSuspiciousTLDs = []string{
	".shop", ".xyz", ".top", ".online", ".icu", ".live",
	".buzz", ".click", ".gq", ".ml", ".tk", ".ga", ".cf",
}

// brandOfficialDomains maps brand tokens to the one domain allowed to
// carry them.
var brandOfficialDomains = map[string]string{
	"paytm":     "paytm.com",
	"phonepe":   "phonepe.com",
	"gpay":      "pay.google.com",
	"googlepay": "pay.google.com",
	"sbi":       "onlinesbi.sbi",
	"hdfc":      "hdfcbank.com",
	"icici":     "icicibank.com",
	"axis":      "axisbank.com",
	"kotak":     "kotak.com",
}

var bankingUIKeywords = []string{"netbanking", "account balance", "fund transfer", "transaction"}

var sensitiveInfoFields = []string{"aadhaar", "pan card", "debit card", "credit card", "card number", "expiry"}

var suspiciousJSMarkers = []string{"document.onkeypress", "onkeydown=", "keylogger", "btoa(document.", "atob("}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func domainTrusted(host string, trusted []string) bool {
	for _, d := range trusted {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func domainSuspicious(host string, trusted []string) bool {
	for _, tld := range probeSuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	for brand, official := range brandOfficialDomains {
		if strings.Contains(host, brand) && !strings.HasSuffix(host, official) && !domainTrusted(host, trusted) {
			return true
		}
	}
	return false
}

// evaluate turns an observation into the behavioral indicator set,
// the reason strings that accompany it, and the weighted dynamic
// score. Credential-harvesting indicators only contribute to the score
// when the domain itself is already suspicious: password and OTP
// fields are normal on legitimate sites.
func evaluate(targetURL string, obs *Observation, trusted []string, weights map[string]float64) (map[string]bool, float64, []string) {
	indicators := map[string]bool{
		IndicatorSuspiciousDomain:     false,
		IndicatorPasswordField:        false,
		IndicatorOTPField:             false,
		IndicatorBankingUI:            false,
		IndicatorSensitiveInfo:        false,
		IndicatorCrossDomainRedirect:  false,
		IndicatorSuspiciousJavascript: false,
		IndicatorConnectionFailed:     false,
	}
	var reasons []string
	score := 0.0

	origin := hostOf(targetURL)
	final := hostOf(obs.FinalURL)
	content := strings.ToLower(obs.PageContent)

	suspicious := domainSuspicious(origin, trusted)
	if suspicious {
		indicators[IndicatorSuspiciousDomain] = true
		score += weights[IndicatorSuspiciousDomain]
		reasons = append(reasons, "domain carries a high-risk TLD or impersonates a brand")
	}

	if final != "" && final != origin && !domainTrusted(final, trusted) {
		indicators[IndicatorCrossDomainRedirect] = true
		score += weights[IndicatorCrossDomainRedirect]
		reasons = append(reasons, fmt.Sprintf("page redirects to unrelated domain %s", final))
	}

	if obs.HasPasswordField {
		indicators[IndicatorPasswordField] = true
		if suspicious {
			score += weights[IndicatorPasswordField]
			reasons = append(reasons, "password field on a suspicious domain")
		}
	}
	if obs.HasOTPField {
		indicators[IndicatorOTPField] = true
		if suspicious {
			score += weights[IndicatorOTPField]
			reasons = append(reasons, "OTP or PIN field on a suspicious domain")
		}
	}

	bankingUI := false
	for _, kw := range bankingUIKeywords {
		if strings.Contains(content, kw) {
			bankingUI = true
			break
		}
	}
	if bankingUI {
		indicators[IndicatorBankingUI] = true
		if suspicious {
			score += weights[IndicatorBankingUI]
			reasons = append(reasons, "page mimics a banking interface")
		}
	}

	sensitive := false
	for _, field := range sensitiveInfoFields {
		if strings.Contains(content, field) {
			sensitive = true
			break
		}
	}
	if sensitive {
		indicators[IndicatorSensitiveInfo] = true
		if suspicious {
			score += weights[IndicatorSensitiveInfo]
			reasons = append(reasons, "page requests sensitive identity or card data")
		}
	}

	if obs.TLSInvalid {
		indicators[IndicatorConnectionFailed] = true
		score += weights[IndicatorConnectionFailed]
		reasons = append(reasons, "TLS certificate failed validation")
	}

	suspiciousJS := false
	for _, marker := range suspiciousJSMarkers {
		if strings.Contains(content, marker) {
			suspiciousJS = true
			break
		}
	}
	if suspiciousJS {
		indicators[IndicatorSuspiciousJavascript] = true
		score += weights[IndicatorSuspiciousJavascript]
		reasons = append(reasons, "page contains keystroke-capturing JavaScript")
	}

	if score > 1.0 {
		score = 1.0
	}
	return indicators, score, reasons
}
