package dynaprobe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// netProbeMaxBody bounds how much of a response we read. Phishing
// pages are small; anything past this adds nothing to the signals.
const netProbeMaxBody = 512 << 10

var (
	passwordInputPattern = regexp.MustCompile(`(?i)<input[^>]*type=["']?password`)
	otpInputPattern      = regexp.MustCompile(`(?i)<input[^>]*(?:name|id|placeholder|autocomplete)=["']?[^"'>]*(?:otp|one-time|pin)`)
	hrefPattern          = regexp.MustCompile(`(?i)href=["']?([^"'\s>]+)`)
)

// NetProber is the degraded probe path used when no browser is
// available: a plain HTTP fetch of the target. It never executes
// JavaScript, so dynamically injected forms are invisible to it, but
// redirects, credential inputs in the raw markup and broken TLS still
// show up.
type NetProber struct {
	client   *http.Client
	insecure *http.Client
	logger   logging.Logger
}

func NewNetProber(logger logging.Logger) *NetProber {
	return &NetProber{
		client: &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		},
		insecure: &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: logger.Named("netprobe"),
	}
}

// Probe implements Prober. A target behind an invalid certificate is
// fetched anyway over an unverified connection and the failure is
// recorded on the observation instead of aborting the probe.
func (n *NetProber) Probe(ctx context.Context, targetURL string) (*Observation, error) {
	obs, err := n.fetch(ctx, n.client, targetURL)
	if err == nil {
		return obs, nil
	}
	if !certificateInvalid(err) {
		return nil, classifyFetchError(err)
	}

	n.logger.Warn("certificate verification failed, refetching unverified",
		logging.String("url", targetURL), logging.Err(err))
	obs, err = n.fetch(ctx, n.insecure, targetURL)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	obs.TLSInvalid = true
	return obs, nil
}

func (n *NetProber) fetch(ctx context.Context, client *http.Client, targetURL string) (*Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, netProbeMaxBody))
	if err != nil {
		return nil, err
	}
	return observeMarkup(resp.Request.URL.String(), string(body)), nil
}

// observeMarkup derives the same signals the browser prober collects,
// from the unrendered HTML.
func observeMarkup(finalURL, content string) *Observation {
	lower := strings.ToLower(content)

	var intents []string
	for _, m := range hrefPattern.FindAllStringSubmatch(content, -1) {
		href := strings.ToLower(m[1])
		if strings.HasPrefix(href, "upi:") || strings.Contains(href, "upi/pay") ||
			strings.Contains(href, "intent://upi") {
			intents = append(intents, href)
		}
	}

	return &Observation{
		FinalURL:         finalURL,
		PageContent:      content,
		HasPasswordField: passwordInputPattern.MatchString(content),
		HasOTPField:      otpInputPattern.MatchString(content),
		ScriptCount:      strings.Count(lower, "<script"),
		FormCount:        strings.Count(lower, "<form"),
		IframeCount:      strings.Count(lower, "<iframe"),
		UPIIntents:       intents,
	}
}

func certificateInvalid(err error) bool {
	var (
		verifyErr *tls.CertificateVerificationError
		authErr   x509.UnknownAuthorityError
		hostErr   x509.HostnameError
		certErr   x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) || errors.As(err, &authErr) ||
		errors.As(err, &hostErr) || errors.As(err, &certErr)
}

// classifyFetchError maps transport failures onto the probe error
// taxonomy. Anything the client could not deliver within the deadline
// is a timeout; everything else transport-level means the target is
// unreachable.
func classifyFetchError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrCodeProbeTimeout, "fetch timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeProbeUnreachable, "target unreachable")
}

// FallbackProber runs a primary prober and degrades to a secondary one
// when the primary itself cannot run, typically a browser binary that
// is missing or crashes mid-render. Target-side failures are returned
// as is: a host the browser cannot reach is just as unreachable over a
// plain socket.
type FallbackProber struct {
	primary  Prober
	fallback Prober
	logger   logging.Logger
}

func NewFallbackProber(primary, fallback Prober, logger logging.Logger) *FallbackProber {
	return &FallbackProber{primary: primary, fallback: fallback, logger: logger.Named("fallback")}
}

// Probe implements Prober.
func (f *FallbackProber) Probe(ctx context.Context, targetURL string) (*Observation, error) {
	obs, err := f.primary.Probe(ctx, targetURL)
	if err == nil || !apperrors.IsCode(err, apperrors.ErrCodeProbeRender) {
		return obs, err
	}
	f.logger.Warn("browser probe failed, degrading to network fetch",
		logging.String("url", targetURL), logging.Err(err))
	return f.fallback.Probe(ctx, targetURL)
}
