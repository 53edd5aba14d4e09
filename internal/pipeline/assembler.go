package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkarels/appealsmith/internal/model"
)

// maxSnippetLen bounds citation snippets copied from evidence chunks.
const maxSnippetLen = 240

// Section ids are stable so downstream tooling can address sections without
// parsing titles.
const (
	sectionHeader    = "header"
	sectionIntro     = "introduction"
	sectionPolicy    = "policy-basis"
	sectionNecessity = "medical-necessity"
	sectionPrecedent = "precedent"
	sectionClosing   = "closing"
)

// AssembleLetter builds the template letter for a case from the merged
// evidence set. Every factual section receives the citations for the evidence
// routed to it; prose that states values absent from those citations will be
// flagged by verification afterwards.
func AssembleLetter(record model.CaseRecord, evidence []model.RetrievedItem, now time.Time) model.Letter {
	routed := routeEvidence(evidence)

	sections := []model.Section{
		headerSection(record, now),
		introSection(record, routed[sectionIntro]),
		policySection(record, routed[sectionPolicy]),
		necessitySection(record, routed[sectionNecessity]),
	}
	if items := routed[sectionPrecedent]; len(items) > 0 {
		sections = append(sections, precedentSection(record, items))
	}
	sections = append(sections, closingSection(record))

	return model.Letter{Case: record, Sections: sections}
}

// routeEvidence assigns each evidence item to the section its document type
// argues for. Correspondence and untyped material lands in the introduction,
// next to the denial it responds to.
func routeEvidence(evidence []model.RetrievedItem) map[string][]model.RetrievedItem {
	routed := make(map[string][]model.RetrievedItem)
	for _, item := range evidence {
		var id string
		switch item.Metadata.DocType {
		case model.DocTypePolicy:
			id = sectionPolicy
		case model.DocTypeMedicalRecord:
			id = sectionNecessity
		case model.DocTypePrecedent:
			id = sectionPrecedent
		default:
			id = sectionIntro
		}
		routed[id] = append(routed[id], item)
	}
	return routed
}

// citationsFor converts routed evidence items into knowledge-chunk citations.
func citationsFor(items []model.RetrievedItem) []model.Citation {
	citations := make([]model.Citation, 0, len(items))
	for _, item := range items {
		snippet := item.Text
		if len(snippet) > maxSnippetLen {
			snippet = snippet[:maxSnippetLen]
		}
		citations = append(citations, model.Citation{
			Kind:       model.CitationKnowledgeChunk,
			DocumentID: item.DocumentID,
			Start:      item.Start,
			End:        item.End,
			Snippet:    snippet,
			Label:      item.Metadata.DocType,
		})
	}
	return citations
}

func headerSection(record model.CaseRecord, now time.Time) model.Section {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", now.Format("January 2, 2006"))
	fmt.Fprintf(&b, "%s\nAppeals Department\n\n", record.PayerName)
	fmt.Fprintf(&b, "Re: Appeal of claim denial")
	if record.ReferenceID != "" {
		fmt.Fprintf(&b, ", reference %s", record.ReferenceID)
	}
	b.WriteString("\n")
	if record.MemberID != "" {
		fmt.Fprintf(&b, "Member ID: %s\n", record.MemberID)
	}
	if record.PatientName != "" {
		fmt.Fprintf(&b, "Patient: %s\n", record.PatientName)
	}
	if record.ProviderName != "" {
		fmt.Fprintf(&b, "Provider: %s\n", record.ProviderName)
	}

	return model.Section{
		ID:      sectionHeader,
		Title:   "Header",
		Role:    model.RoleHeader,
		Content: strings.TrimRight(b.String(), "\n"),
	}
}

func introSection(record model.CaseRecord, items []model.RetrievedItem) model.Section {
	var b strings.Builder
	b.WriteString("I am writing to formally appeal the denial of coverage")
	if record.Category != "" {
		fmt.Fprintf(&b, " for %s services", record.Category)
	}
	if len(record.ServiceCodes) > 0 {
		fmt.Fprintf(&b, " (procedure code%s %s)", plural(record.ServiceCodes), strings.Join(record.ServiceCodes, ", "))
	}
	b.WriteString(".")
	if record.DenialReason != "" {
		fmt.Fprintf(&b, " The denial states: %q.", record.DenialReason)
	}
	b.WriteString(" This appeal demonstrates that the denied services meet the applicable coverage criteria.")

	return model.Section{
		ID:        sectionIntro,
		Title:     "Introduction",
		Role:      model.RoleBody,
		Content:   b.String(),
		Citations: citationsFor(items),
	}
}

func policySection(record model.CaseRecord, items []model.RetrievedItem) model.Section {
	var b strings.Builder
	fmt.Fprintf(&b, "The plan's own policy language supports coverage of the services at issue.")
	if record.PayerName != "" {
		fmt.Fprintf(&b, " %s's published criteria govern this determination, and the denied services fall within them.", record.PayerName)
	}
	b.WriteString(" The cited policy excerpts below set out the applicable coverage terms.")

	return model.Section{
		ID:        sectionPolicy,
		Title:     "Policy Basis",
		Role:      model.RoleBody,
		Content:   b.String(),
		Citations: citationsFor(items),
	}
}

func necessitySection(record model.CaseRecord, items []model.RetrievedItem) model.Section {
	var b strings.Builder
	b.WriteString("The services were medically necessary for this patient.")
	if len(record.DiagnosisCodes) > 0 {
		fmt.Fprintf(&b, " The treating diagnosis (%s) is documented in the medical record.", strings.Join(record.DiagnosisCodes, ", "))
	}
	b.WriteString(" The clinical documentation cited below supports the necessity of the denied services and the treatment plan they belong to.")

	return model.Section{
		ID:        sectionNecessity,
		Title:     "Medical Necessity",
		Role:      model.RoleBody,
		Content:   b.String(),
		Citations: citationsFor(items),
	}
}

func precedentSection(record model.CaseRecord, items []model.RetrievedItem) model.Section {
	content := "Comparable appeals in this service category have been overturned on review. The precedents cited below reflect determinations where equivalent services were found covered under the same criteria."

	return model.Section{
		ID:        sectionPrecedent,
		Title:     "Precedent",
		Role:      model.RoleBody,
		Content:   content,
		Citations: citationsFor(items),
	}
}

func closingSection(record model.CaseRecord) model.Section {
	var b strings.Builder
	b.WriteString("For the reasons above, I respectfully request that this denial be overturned and the claim paid as covered.")
	b.WriteString(" Please direct any questions or requests for additional documentation to the provider's office.\n\nSincerely,\n")
	if record.ProviderName != "" {
		b.WriteString(record.ProviderName)
	}

	return model.Section{
		ID:      sectionClosing,
		Title:   "Closing",
		Role:    model.RoleClosing,
		Content: strings.TrimRight(b.String(), "\n"),
	}
}

func plural(s []string) string {
	if len(s) > 1 {
		return "s"
	}
	return ""
}
