package model

import "time"

// ComposeReport is the complete output of composing one appeal letter.
// Verification never fails the compose: everything that could not be
// grounded is surfaced here as data.
type ComposeReport struct {
	Letter     Letter    `json:"letter"`
	ComposedAt time.Time `json:"composed_at"`

	Evidence []RetrievedItem `json:"evidence,omitempty"` // Merged ranked evidence used for assembly

	EvidenceGaps []string `json:"evidence_gaps,omitempty"` // Deduplicated "needs evidence" items
	Unresolved   []string `json:"unresolved,omitempty"`    // Human-readable unresolved claim descriptions
	Warnings     []string `json:"warnings,omitempty"`      // Section-level precondition violations etc.

	Grounding GroundingStats `json:"grounding"`

	Draft *DraftInfo `json:"draft,omitempty"` // Optional LLM draft info (never affects verification)
}

// GroundingStats is the transparent summary of the verification pass.
type GroundingStats struct {
	SentencesChecked int `json:"sentences_checked"`
	ClaimsFlagged    int `json:"claims_flagged"`
	ClaimsCovered    int `json:"claims_covered"`
	MarkersInserted  int `json:"markers_inserted"`
}

// DraftInfo records how the optional LLM draft was produced.
// It is informational only and never affects grounding results.
type DraftInfo struct {
	Enabled        bool     `json:"enabled"`
	Provider       string   `json:"provider,omitempty"`
	Model          string   `json:"model,omitempty"`
	StrictEvidence bool     `json:"strict_evidence"`
	TokensUsed     int      `json:"tokens_used,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}
