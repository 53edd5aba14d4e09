// Package llm provides the optional drafting layer. A provider turns a case
// plus an evidence allowlist into section prose; the drafter wrapper
// enforces the allowlist and degrades every failure to warnings. Drafted
// text always goes through the grounding verifier afterwards — nothing here
// can bypass it.
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkarels/appealsmith/internal/model"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Draft generates section prose under strict evidence constraints.
	Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// EvidenceSnippet is one allowlisted piece of evidence, addressed by a short
// ref like "E3" that the model must use to cite it.
type EvidenceSnippet struct {
	Ref     string
	Snippet string
}

// DraftRequest contains the input for drafting one section.
type DraftRequest struct {
	// Case is the appeal case being argued.
	Case model.CaseRecord

	// SectionTitle names the section to draft.
	SectionTitle string

	// Instructions describe what the section should argue.
	Instructions string

	// Evidence is the STRICT allowlist of snippets the model may cite.
	// It cannot reference anything outside this list.
	Evidence []EvidenceSnippet

	// Model overrides the configured model (provider-specific).
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// DraftResponse contains the provider's output.
type DraftResponse struct {
	// Text is the drafted section prose.
	Text string

	// CitedRefs are the evidence refs the model actually cited.
	CitedRefs []string

	// Model generated the response.
	Model string

	// TokensUsed tracks token consumption.
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "".
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey for OpenAI/Anthropic.
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama).
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	// StrictEvidence enforces the snippet allowlist (should always be true).
	StrictEvidence bool

	// MaxTokens for response generation.
	MaxTokens int

	// Proxy settings.
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:       "", // Disabled by default
		Timeout:        30,
		StrictEvidence: true, // CRITICAL: always enforce
		MaxTokens:      1200,
	}
}

// refPattern matches evidence refs like [E1] in drafted text.
var (
	refPattern       = regexp.MustCompile(`\[E\d+\]`)
	danglingPunct    = regexp.MustCompile(`[ \t]+([.,;:!?])`)
	collapsedSpacing = regexp.MustCompile(`[ \t]{2,}`)
)

// BuildPrompt constructs the default drafting prompt with strict evidence
// mode.
func BuildPrompt(req DraftRequest) string {
	var evidence strings.Builder
	for _, e := range req.Evidence {
		fmt.Fprintf(&evidence, "[%s] %s\n", e.Ref, e.Snippet)
	}

	return fmt.Sprintf(`You are drafting one section of a health-insurance appeal letter.

CRITICAL RULES:
1. You may ONLY state facts, amounts, dates, codes or counts that appear in the evidence list below, and every such statement MUST cite its evidence ref inline, e.g. "...covers 20 visits per year [E2]."
2. DO NOT invent, infer or recall any number, date or code that is not in the evidence list.
3. If the evidence does not support a point, argue it in general terms without numbers.
4. Write formal, factual prose. No salutations or signatures; those belong to other sections.

Case:
- Payer: %s
- Service category: %s
- Service codes: %s
- Denial reason: %s

Section to draft: %s
%s

Evidence (the ONLY citable material):
%s`,
		req.Case.PayerName, req.Case.Category,
		strings.Join(req.Case.ServiceCodes, ", "), req.Case.DenialReason,
		req.SectionTitle, req.Instructions, evidence.String())
}

// StripRefs removes inline evidence refs like [E1] from drafted text and
// tidies the whitespace they leave behind. Callers attach the corresponding
// citations to the section instead.
func StripRefs(text string) string {
	text = refPattern.ReplaceAllString(text, "")
	text = danglingPunct.ReplaceAllString(text, "$1")
	text = collapsedSpacing.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// extractRefs extracts deduplicated evidence refs from drafted text.
func extractRefs(text string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, m := range refPattern.FindAllString(text, -1) {
		ref := strings.Trim(m, "[]")
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// allowedRef reports whether a cited ref is in the allowlist.
func allowedRef(evidence []EvidenceSnippet, ref string) bool {
	for _, e := range evidence {
		if e.Ref == ref {
			return true
		}
	}
	return false
}
