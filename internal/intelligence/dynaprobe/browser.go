package dynaprobe

import (
	"context"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// domProbeJS extracts form and input signals from the settled page in
// one round trip.
const domProbeJS = `(() => {
	const info = {};
	info.script_count = document.scripts ? document.scripts.length : 0;
	info.iframe_count = document.querySelectorAll('iframe').length;
	info.form_count = document.querySelectorAll('form').length;
	info.has_password_input = !!document.querySelector('input[type=password]');
	info.has_otp_input = !!document.querySelector(
		'input[autocomplete=one-time-code], input[name*=otp i], input[id*=otp i], input[placeholder*=otp i], input[name*=pin i], input[id*=pin i]');
	info.upi_intents = [];
	for (const a of document.querySelectorAll('a[href], area[href]')) {
		const h = (a.getAttribute('href') || '').toLowerCase();
		if (h.startsWith('upi:') || h.includes('upi/pay') || h.includes('intent://upi')) {
			info.upi_intents.push(h);
		}
	}
	return info;
})()`

type domProbeResult struct {
	ScriptCount      int      `json:"script_count"`
	IframeCount      int      `json:"iframe_count"`
	FormCount        int      `json:"form_count"`
	HasPasswordInput bool     `json:"has_password_input"`
	HasOTPInput      bool     `json:"has_otp_input"`
	UPIIntents       []string `json:"upi_intents"`
}

// BrowserProber navigates targets with a headless Chromium instance.
// Each probe runs in a fresh browser context so state never leaks
// between targets.
type BrowserProber struct {
	logger logging.Logger
}

func NewBrowserProber(logger logging.Logger) *BrowserProber {
	return &BrowserProber{logger: logger.Named("browser")}
}

// Probe implements Prober.
func (b *BrowserProber) Probe(ctx context.Context, targetURL string) (*Observation, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var (
		finalURL string
		content  string
		dom      domProbeResult
	)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &content, chromedp.ByQuery),
		chromedp.Evaluate(domProbeJS, &dom),
	)
	if err != nil {
		return nil, classifyNavigationError(err)
	}

	return &Observation{
		FinalURL:         finalURL,
		PageContent:      content,
		HasPasswordField: dom.HasPasswordInput,
		HasOTPField:      dom.HasOTPInput,
		ScriptCount:      dom.ScriptCount,
		FormCount:        dom.FormCount,
		IframeCount:      dom.IframeCount,
		UPIIntents:       dom.UPIIntents,
	}, nil
}

// classifyNavigationError maps Chromium navigation failures onto the
// probe error taxonomy. Chromium reports network failures as net::ERR_*
// strings inside the error message.
func classifyNavigationError(err error) error {
	if err == context.DeadlineExceeded {
		return apperrors.Wrap(err, apperrors.ErrCodeProbeTimeout, "navigation timed out")
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "net::ERR_NAME_NOT_RESOLVED"),
		strings.Contains(msg, "net::ERR_CONNECTION_REFUSED"),
		strings.Contains(msg, "net::ERR_CONNECTION_TIMED_OUT"),
		strings.Contains(msg, "net::ERR_ADDRESS_UNREACHABLE"),
		strings.Contains(msg, "net::ERR_INTERNET_DISCONNECTED"):
		return apperrors.Wrap(err, apperrors.ErrCodeProbeUnreachable, "target unreachable")
	case strings.Contains(msg, "context deadline exceeded"):
		return apperrors.Wrap(err, apperrors.ErrCodeProbeTimeout, "navigation timed out")
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeProbeRender, "page failed to render")
	}
}
