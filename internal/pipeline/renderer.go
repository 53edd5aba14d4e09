package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkarels/appealsmith/internal/model"
)

// RenderJSON serializes the full report as indented JSON.
func RenderJSON(report *model.ComposeReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// RenderMarkdown renders the letter as a Markdown document. Evidence gaps
// stay visible inline through their markers; the gap list is appended so a
// reviewer sees everything still owed in one place.
func RenderMarkdown(report *model.ComposeReport, includeFooter bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Appeal Letter: %s\n\n", report.Letter.Case.PayerName)

	for _, section := range report.Letter.Sections {
		if section.Role != model.RoleHeader {
			fmt.Fprintf(&b, "## %s\n\n", section.Title)
		}
		b.WriteString(section.Content)
		b.WriteString("\n\n")
	}

	if len(report.EvidenceGaps) > 0 {
		b.WriteString("## Outstanding Evidence\n\n")
		for _, gap := range report.EvidenceGaps {
			fmt.Fprintf(&b, "- %s\n", gap)
		}
		b.WriteString("\n")
	}

	if includeFooter {
		fmt.Fprintf(&b, "---\n\n*Composed %s. Grounding: %d claims flagged, %d covered, %d markers inserted.*\n",
			report.ComposedAt.Format("2006-01-02 15:04 UTC"),
			report.Grounding.ClaimsFlagged, report.Grounding.ClaimsCovered, report.Grounding.MarkersInserted)
	}

	return b.String()
}

// WriteSummary prints the one-screen compose summary.
func WriteSummary(w io.Writer, report *model.ComposeReport) {
	fmt.Fprintf(w, "Composed appeal letter for %s (%s)\n", report.Letter.Case.PayerName, report.Letter.Case.Category)
	fmt.Fprintf(w, "  Sections:  %d\n", len(report.Letter.Sections))
	fmt.Fprintf(w, "  Evidence:  %d chunks\n", len(report.Evidence))
	fmt.Fprintf(w, "  Grounding: %d sentences checked, %d claims flagged, %d covered, %d markers\n",
		report.Grounding.SentencesChecked, report.Grounding.ClaimsFlagged,
		report.Grounding.ClaimsCovered, report.Grounding.MarkersInserted)

	if report.Draft != nil && report.Draft.Enabled {
		fmt.Fprintf(w, "  Draft:     %s", report.Draft.Provider)
		if report.Draft.Model != "" {
			fmt.Fprintf(w, " (%s, %d tokens)", report.Draft.Model, report.Draft.TokensUsed)
		}
		fmt.Fprintln(w)
	}

	for _, gap := range report.EvidenceGaps {
		fmt.Fprintf(w, "  NEEDS EVIDENCE: %s\n", gap)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "  WARNING: %s\n", warning)
	}
	if report.Draft != nil {
		for _, warning := range report.Draft.Warnings {
			fmt.Fprintf(w, "  DRAFT WARNING: %s\n", warning)
		}
	}
}
