// Package store persists documents and their chunks and serves candidate
// sets to the retrieval index. The core treats the store as an opaque
// collaborator: candidates handed out are snapshots that must not mutate
// while a search is in flight.
package store

import (
	"context"

	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/textindex"
)

// Store is the document/chunk persistence boundary.
type Store interface {
	// PutDocument upserts a document record.
	PutDocument(ctx context.Context, doc model.Document) error

	// PutChunks replaces the chunks of a document. Re-ingestion supersedes:
	// old chunks are removed, never mutated.
	PutChunks(ctx context.Context, documentID string, chunks []model.Chunk) error

	// ListCandidates returns a snapshot of chunks matching the equality
	// filters, in stable (document, chunk index) order. Tags are advisory
	// and never narrow the result here.
	ListCandidates(ctx context.Context, filters textindex.Filters) ([]textindex.Candidate, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, documentID string) error

	Close() error
}
