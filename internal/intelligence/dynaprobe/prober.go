// Package dynaprobe implements the second assessment stage: visiting a
// suspicious artifact with a headless browser and scoring what the
// rendered page actually does. It only ever runs after the static
// stage has flagged an artifact.
package dynaprobe

import (
	"context"

	"github.com/scamshield/riskengine/internal/domain/artifact"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// Observation is what one successful probe attempt saw after the page
// settled.
type Observation struct {
	// FinalURL is the address after all redirects.
	FinalURL string

	// PageContent is the rendered HTML.
	PageContent string

	HasPasswordField bool
	HasOTPField      bool
	ScriptCount      int
	FormCount        int
	IframeCount      int

	// UPIIntents are upi:// links discovered in the page.
	UPIIntents []string

	// TLSInvalid marks a page that was only reachable past a failing
	// certificate check (expired, self-signed, wrong host).
	TLSInvalid bool
}

// Prober performs a single navigation attempt against a target URL.
// Implementations must honor ctx cancellation and return AppErrors
// with a PROBE_* code on failure.
type Prober interface {
	Probe(ctx context.Context, targetURL string) (*Observation, error)
}

// Registry maps artifact types to the prober able to inspect them.
// Only links are probeable today; lookups for anything else report the
// artifact as unsupported.
type Registry struct {
	probers map[artifact.Type]Prober
}

func NewRegistry() *Registry {
	return &Registry{probers: make(map[artifact.Type]Prober)}
}

// Register binds a prober to an artifact type, replacing any previous
// binding.
func (r *Registry) Register(t artifact.Type, p Prober) {
	r.probers[t] = p
}

// Lookup returns the prober for an artifact type.
func (r *Registry) Lookup(t artifact.Type) (Prober, error) {
	p, ok := r.probers[t]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeProbeUnsupported,
			"no dynamic prober for artifact type %s", t)
	}
	return p, nil
}

// Supports reports whether a prober is registered for the type.
func (r *Registry) Supports(t artifact.Type) bool {
	_, ok := r.probers[t]
	return ok
}
