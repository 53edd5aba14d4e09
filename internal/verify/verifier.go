package verify

import (
	"fmt"
	"strings"

	"github.com/pkarels/appealsmith/internal/model"
)

// maxUnresolvedSentence bounds the sentence excerpt recorded for a gap.
const maxUnresolvedSentence = 90

// Result is the complete output of a verification pass.
type Result struct {
	Sections     []model.Section
	EvidenceGaps []string // Deduplicated marker descriptions, first-seen order
	Unresolved   []string // Section title + truncated sentence per inserted marker
	Warnings     []string // Section-level precondition violations
	Stats        model.GroundingStats
}

// Verifier checks assembled sections against their citations.
type Verifier struct{}

// NewVerifier creates a new verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify scans every section sentence by sentence. Sentences with numeric
// claims must either be covered by a citation snippet or get a needs-evidence
// marker appended. Verification is idempotent: markers are excluded from
// re-detection, so verifying already-patched sections changes nothing.
func (v *Verifier) Verify(sections []model.Section) Result {
	result := Result{
		Sections: make([]model.Section, len(sections)),
	}

	for i, section := range sections {
		patched := section
		// Header and closing hold identifiers and boilerplate, not claims.
		if section.Role != model.RoleHeader && section.Role != model.RoleClosing {
			patched.Content = v.patchSection(section, &result)
		}
		result.Sections[i] = patched

		if warning := sectionWarning(patched); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}

	result.EvidenceGaps = CollectGaps(result.Sections)
	return result
}

// patchSection rebuilds a section's content from its segments, appending a
// marker after every uncovered flagged sentence.
func (v *Verifier) patchSection(section model.Section, result *Result) string {
	segments := splitSegments(section.Content)

	var out []segment
	for i, seg := range segments {
		out = append(out, seg)

		if seg.kind != segSentence || strings.TrimSpace(seg.text) == "" {
			continue
		}
		// A sentence already carrying or followed by a marker is settled.
		if markerRe.MatchString(seg.text) || followedByMarker(segments, i) {
			continue
		}

		result.Stats.SentencesChecked++

		if !hasNumericClaim(seg.text) {
			continue
		}
		values := extractValues(seg.text)
		if len(values) == 0 {
			// Self-evidently non-factual: nothing checkable, no citation needed.
			continue
		}

		result.Stats.ClaimsFlagged++

		if covered(values, section.Citations) {
			result.Stats.ClaimsCovered++
			continue
		}

		description := "citation for " + describeMissing(seg.text)
		if description == "citation for " {
			description = "citation for numeric claim"
		}
		out = append(out, segment{text: " " + Marker(description), kind: segMarker})

		result.Stats.MarkersInserted++
		result.Unresolved = append(result.Unresolved,
			fmt.Sprintf("%s: %s", section.Title, truncate(strings.TrimSpace(seg.text), maxUnresolvedSentence)))
	}

	return joinSegments(out)
}

// covered reports whether at least one citation snippet textually contains at
// least one of the claimed values. Commas are stripped from both sides so
// thousands separators cannot defeat the match.
func covered(values []string, citations []model.Citation) bool {
	for _, citation := range citations {
		snippet := stripCommas(citation.Snippet)
		for _, value := range values {
			if strings.Contains(snippet, value) {
				return true
			}
		}
	}
	return false
}

// followedByMarker reports whether the next non-whitespace segment after
// index i is a marker.
func followedByMarker(segments []segment, i int) bool {
	for j := i + 1; j < len(segments); j++ {
		if segments[j].kind == segMarker {
			return true
		}
		if strings.TrimSpace(segments[j].text) != "" {
			return false
		}
	}
	return false
}

// sectionWarning flags a non-header, non-closing section that has neither
// citations nor a needs-evidence marker anywhere in its content. There is no
// sentence-scoped insertion point for a whole-section gap, so this is
// surfaced to the caller instead of auto-patched.
func sectionWarning(section model.Section) string {
	if section.Role == model.RoleHeader || section.Role == model.RoleClosing {
		return ""
	}
	if strings.TrimSpace(section.Content) == "" {
		return ""
	}
	if len(section.Citations) > 0 || markerRe.MatchString(section.Content) {
		return ""
	}
	return fmt.Sprintf("section %q has no citations and no evidence markers", section.Title)
}

// CollectGaps extracts every needs-evidence marker across all sections,
// strips the wrapper, trims, and deduplicates by exact string equality,
// preserving first-seen order.
func CollectGaps(sections []model.Section) []string {
	var gaps []string
	seen := make(map[string]bool)

	for _, section := range sections {
		for _, match := range markerRe.FindAllStringSubmatch(section.Content, -1) {
			gap := strings.TrimSpace(match[1])
			if gap == "" || seen[gap] {
				continue
			}
			seen[gap] = true
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
