package model

import (
	"strconv"
	"time"
)

// TermVector is a sparse mapping from term to non-negative weight.
// Absent keys imply weight zero; implementations never store negative weights.
type TermVector map[string]float64

// Document type constants used in chunk metadata.
const (
	DocTypePolicy         = "policy"
	DocTypeMedicalRecord  = "medical_record"
	DocTypeCorrespondence = "correspondence"
	DocTypePrecedent      = "precedent"
	DocTypeTemplate       = "template"
	DocTypeOther          = "other"
)

// Metadata describes the document a chunk came from. It is validated once
// at the store boundary so downstream code can assume well-typed fields.
type Metadata struct {
	DocType   string    `json:"doc_type"`
	OwnerKey  string    `json:"owner_key,omitempty"` // Empty means unscoped/shared
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Normalize fills defaults so metadata is always well-formed after ingestion.
func (m *Metadata) Normalize() {
	if m.DocType == "" {
		m.DocType = DocTypeOther
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
}

// Chunk is a bounded, offset-tracked substring of a source document.
// Chunks are immutable once created; re-ingesting a document supersedes
// its old chunks rather than mutating them.
type Chunk struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	Index      int        `json:"index"` // Ordinal position within the parent document
	Text       string     `json:"text"`
	Start      int        `json:"start"` // Character offset into the original text
	End        int        `json:"end"`
	Vector     TermVector `json:"vector,omitempty"`    // Sparse term-frequency vector
	Embedding  []float32  `json:"embedding,omitempty"` // Optional dense embedding
}

// Document represents an ingested source document.
type Document struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// RetrievedItem is one ranked search hit. It is ephemeral: produced per
// query, never persisted.
type RetrievedItem struct {
	DocumentID string   `json:"document_id"`
	ChunkIndex int      `json:"chunk_index"`
	Score      float64  `json:"score"`
	Text       string   `json:"text"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Metadata   Metadata `json:"metadata"`
}

// Key returns the chunk identity used for cross-query deduplication.
func (r RetrievedItem) Key() string {
	return r.DocumentID + "#" + strconv.Itoa(r.ChunkIndex)
}
