package retrieval

import (
	"context"

	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/store"
	"github.com/pkarels/appealsmith/internal/textindex"
)

// Retriever binds the document store to the retrieval index: it loads the
// candidate snapshot for a filter set and lets the index rank it.
type Retriever struct {
	store store.Store
	index *textindex.Index
}

// NewRetriever creates a Retriever.
func NewRetriever(st store.Store, index *textindex.Index) *Retriever {
	return &Retriever{store: st, index: index}
}

// Search implements Searcher.
func (r *Retriever) Search(ctx context.Context, query string, filters textindex.Filters, topK int) ([]model.RetrievedItem, error) {
	candidates, err := r.store.ListCandidates(ctx, filters)
	if err != nil {
		return nil, err
	}
	return r.index.Search(query, candidates, filters, topK), nil
}
