// Package pipeline orchestrates letter composition: retrieve evidence for
// the case, assemble the template letter, optionally draft section prose
// through an LLM, then verify grounding. Verification always runs last and
// always runs, drafted or not.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pkarels/appealsmith/internal/llm"
	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/retrieval"
	"github.com/pkarels/appealsmith/internal/verify"
)

// Composer runs the compose pipeline for one case at a time.
type Composer struct {
	aggregator *retrieval.Aggregator
	drafter    *llm.Drafter
	verifier   *verify.Verifier

	strictEvidence bool
	now            func() time.Time
}

// NewComposer creates a composer. A nil drafter disables drafting.
func NewComposer(aggregator *retrieval.Aggregator, drafter *llm.Drafter, strictEvidence bool) *Composer {
	if drafter == nil {
		drafter = llm.NewDrafter(nil, 0)
	}
	return &Composer{
		aggregator:     aggregator,
		drafter:        drafter,
		verifier:       verify.NewVerifier(),
		strictEvidence: strictEvidence,
		now:            time.Now,
	}
}

// Compose produces the full report for a case. Only evidence retrieval can
// fail; assembly, drafting and verification degrade to warnings inside the
// report.
func (c *Composer) Compose(ctx context.Context, record model.CaseRecord) (*model.ComposeReport, error) {
	evidence, err := c.aggregator.Retrieve(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("retrieve evidence: %w", err)
	}

	composedAt := c.now().UTC()
	letter := AssembleLetter(record, evidence, composedAt)

	draft := c.draftSections(ctx, record, &letter)

	verified := c.verifier.Verify(letter.Sections)
	letter.Sections = verified.Sections

	return &model.ComposeReport{
		Letter:       letter,
		ComposedAt:   composedAt,
		Evidence:     evidence,
		EvidenceGaps: verified.EvidenceGaps,
		Unresolved:   verified.Unresolved,
		Warnings:     verified.Warnings,
		Grounding:    verified.Stats,
		Draft:        draft,
	}, nil
}

// draftSections replaces body section prose with LLM drafts where the drafter
// succeeds. Header and closing stay templated; any drafting failure keeps the
// template prose and is recorded as a draft warning.
func (c *Composer) draftSections(ctx context.Context, record model.CaseRecord, letter *model.Letter) *model.DraftInfo {
	if !c.drafter.Enabled() {
		return nil
	}

	info := &model.DraftInfo{
		Enabled:        true,
		Provider:       c.drafter.ProviderName(),
		StrictEvidence: c.strictEvidence,
	}

	for i := range letter.Sections {
		section := &letter.Sections[i]
		if section.Role != model.RoleBody {
			continue
		}

		resp, warnings := c.drafter.Draft(ctx, llm.DraftRequest{
			Case:         record,
			SectionTitle: section.Title,
			Instructions: draftInstructions(section.ID),
			Evidence:     snippetsFor(section.Citations),
		})
		info.Warnings = append(info.Warnings, warnings...)
		if resp == nil {
			continue
		}

		section.Content = llm.StripRefs(resp.Text)
		info.Model = resp.Model
		info.TokensUsed += resp.TokensUsed
	}

	return info
}

// snippetsFor numbers a section's citation snippets as the draft allowlist.
func snippetsFor(citations []model.Citation) []llm.EvidenceSnippet {
	snippets := make([]llm.EvidenceSnippet, 0, len(citations))
	for i, citation := range citations {
		snippets = append(snippets, llm.EvidenceSnippet{
			Ref:     fmt.Sprintf("E%d", i+1),
			Snippet: citation.Snippet,
		})
	}
	return snippets
}

func draftInstructions(sectionID string) string {
	switch sectionID {
	case sectionIntro:
		return "State that this letter appeals the denial, restate the denial reason, and preview the grounds for reversal."
	case sectionPolicy:
		return "Argue that the payer's own policy language covers the denied services, quoting only the evidence excerpts."
	case sectionNecessity:
		return "Argue medical necessity from the clinical evidence excerpts."
	case sectionPrecedent:
		return "Note that comparable appeals were overturned, per the evidence excerpts."
	default:
		return "Write the section in formal appeal-letter prose."
	}
}
