package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkarels/appealsmith/internal/worker"
)

// Drafter wraps a provider with an availability check, rate limiting and
// failure-as-data degradation. A draft that cannot happen produces warnings,
// never an error: the letter falls back to its template prose.
type Drafter struct {
	provider Provider
	limiter  *worker.Limiter

	checkOnce sync.Once
	available bool
}

// NewDrafter creates a drafter around the given provider. A nil provider
// means drafting is disabled. requestsPerSecond paces calls to the provider.
func NewDrafter(provider Provider, requestsPerSecond float64) *Drafter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Drafter{
		provider: provider,
		limiter:  worker.NewLimiter(requestsPerSecond, 1),
	}
}

// Enabled reports whether a provider is configured.
func (d *Drafter) Enabled() bool {
	return d.provider != nil
}

// ProviderName returns the configured provider's name, or "" when disabled.
func (d *Drafter) ProviderName() string {
	if d.provider == nil {
		return ""
	}
	return d.provider.Name()
}

// Draft drafts one section. A nil response with warnings means the section
// keeps its template prose: provider unavailable, rate wait cancelled, API
// failure and citation leaks all degrade this way.
func (d *Drafter) Draft(ctx context.Context, req DraftRequest) (*DraftResponse, []string) {
	if d.provider == nil {
		return nil, nil
	}

	// Availability is checked once per drafter, not per section.
	d.checkOnce.Do(func() {
		d.available = d.provider.IsAvailable(ctx)
	})
	if !d.available {
		return nil, []string{fmt.Sprintf("LLM provider %s unavailable, section %q kept template prose", d.provider.Name(), req.SectionTitle)}
	}

	if err := d.limiter.Wait(ctx, d.provider.Name()); err != nil {
		return nil, []string{fmt.Sprintf("rate limit wait for %s: %v", d.provider.Name(), err)}
	}

	resp, err := d.provider.Draft(ctx, req)
	if err != nil {
		return nil, []string{fmt.Sprintf("draft failed for section %q: %v", req.SectionTitle, err)}
	}
	if resp == nil || resp.Text == "" {
		return nil, []string{fmt.Sprintf("empty draft for section %q, kept template prose", req.SectionTitle)}
	}
	return resp, nil
}
