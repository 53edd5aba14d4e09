package model

// CitationKind classifies what a citation points at.
type CitationKind string

const (
	// CitationSourceSpan points at a span inside a case-owned source document
	// (e.g., the denial letter itself).
	CitationSourceSpan CitationKind = "source_span"
	// CitationKnowledgeChunk points at a retrieved knowledge-base chunk.
	CitationKnowledgeChunk CitationKind = "knowledge_chunk"
)

// Citation is a pointer from a generated factual claim back to the exact
// source text that supports it. Snippet must never be empty for a valid
// citation and must be a (possibly truncated) substring of the text at
// [Start,End) in the referenced document.
type Citation struct {
	Kind       CitationKind `json:"kind"`
	DocumentID string       `json:"document_id"`
	Start      int          `json:"start"`
	End        int          `json:"end"`
	Snippet    string       `json:"snippet"`
	Label      string       `json:"label,omitempty"` // Semantic role (e.g., "memberId", "policyReference")
}

// SectionRole marks sections that are exempt from the citation-coverage rule.
type SectionRole string

const (
	RoleHeader  SectionRole = "header"
	RoleBody    SectionRole = "body"
	RoleClosing SectionRole = "closing"
)

// Section is one unit of generated prose with its attached citations.
type Section struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Role      SectionRole `json:"role,omitempty"`
	Content   string      `json:"content"`
	Citations []Citation  `json:"citations,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
}

// Letter is the assembled appeal letter: the case plus its ordered sections.
type Letter struct {
	Case     CaseRecord `json:"case"`
	Sections []Section  `json:"sections"`
}
