// Package retrieval derives a battery of targeted queries from a case record
// and merges their results into one ranked evidence set. Several narrow
// queries diversify the evidence across angles that a single broad query
// would under- or over-retrieve.
package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/textindex"
)

// DefaultPerQueryK is the per-query result count.
const DefaultPerQueryK = 5

// DefaultMaxEvidence caps the merged evidence set.
const DefaultMaxEvidence = 15

// Searcher runs a single query against the chunk corpus. The context bounds
// store reads only; scoring itself has nothing to cancel.
type Searcher interface {
	Search(ctx context.Context, query string, filters textindex.Filters, topK int) ([]model.RetrievedItem, error)
}

// Query is one derived query with its own filter set.
type Query struct {
	Text    string
	Filters textindex.Filters
}

// Aggregator issues the query battery and merges the results.
type Aggregator struct {
	searcher    Searcher
	perQueryK   int
	maxEvidence int
}

// NewAggregator creates an aggregator over the given searcher. Non-positive
// limits fall back to the defaults.
func NewAggregator(searcher Searcher, perQueryK, maxEvidence int) *Aggregator {
	if perQueryK <= 0 {
		perQueryK = DefaultPerQueryK
	}
	if maxEvidence <= 0 {
		maxEvidence = DefaultMaxEvidence
	}
	return &Aggregator{
		searcher:    searcher,
		perQueryK:   perQueryK,
		maxEvidence: maxEvidence,
	}
}

// DeriveQueries builds the fixed query battery for a case. Blank queries
// (from missing case fields) are skipped later, not errored on.
func DeriveQueries(record model.CaseRecord) []Query {
	codes := strings.Join(record.ServiceCodes, " ")
	owner := record.OwnerKey

	return []Query{
		// Payer policy language about the denied service.
		{
			Text:    join(record.PayerName, record.Category, codes, "coverage policy"),
			Filters: textindex.Filters{OwnerKey: owner, DocType: model.DocTypePolicy},
		},
		// Medical-necessity criteria for the billed codes.
		{
			Text:    join(codes, "medical necessity criteria"),
			Filters: textindex.Filters{OwnerKey: owner},
		},
		// Accepted precedents in the same category.
		{
			Text:    join(record.Category, "appeal overturned approved"),
			Filters: textindex.Filters{OwnerKey: owner, DocType: model.DocTypePrecedent},
		},
		// Exact reference id, when the payer supplied one.
		{
			Text:    record.ReferenceID,
			Filters: textindex.Filters{OwnerKey: owner},
		},
		// Clinical evidence for the service in this category.
		{
			Text:    join(record.Category, codes, "clinical evidence outcomes"),
			Filters: textindex.Filters{OwnerKey: owner, DocType: model.DocTypeMedicalRecord},
		},
		// Letter templates for the category.
		{
			Text:    join(record.Category, "appeal letter"),
			Filters: textindex.Filters{OwnerKey: owner, DocType: model.DocTypeTemplate},
		},
	}
}

// Retrieve runs every derived query and merges the results keyed by chunk
// identity, keeping the maximum score for chunks retrieved by more than one
// query. The merged set is sorted descending by score and truncated to the
// overall cap. Individual query errors are skipped: partial evidence beats
// none.
func (a *Aggregator) Retrieve(ctx context.Context, record model.CaseRecord) ([]model.RetrievedItem, error) {
	best := make(map[string]model.RetrievedItem)
	var order []string

	for _, query := range DeriveQueries(record) {
		if strings.TrimSpace(query.Text) == "" {
			continue
		}

		items, err := a.searcher.Search(ctx, query.Text, query.Filters, a.perQueryK)
		if err != nil {
			continue
		}

		for _, item := range items {
			key := item.Key()
			existing, ok := best[key]
			if !ok {
				best[key] = item
				order = append(order, key)
				continue
			}
			if item.Score > existing.Score {
				best[key] = item
			}
		}
	}

	merged := make([]model.RetrievedItem, 0, len(order))
	for _, key := range order {
		merged = append(merged, best[key])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > a.maxEvidence {
		merged = merged[:a.maxEvidence]
	}
	return merged, nil
}

// join concatenates non-empty parts with single spaces.
func join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, " ")
}
