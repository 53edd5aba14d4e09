package textindex

import (
	"sort"
	"strings"

	"github.com/pkarels/appealsmith/internal/model"
)

// tagBoostFactor is the per-matching-tag multiplier applied after scoring.
const tagBoostFactor = 0.1

// Candidate is one chunk loaded from the store for scoring. The caller must
// not mutate candidates while a search is in flight.
type Candidate struct {
	Chunk    model.Chunk
	Metadata model.Metadata
}

// Filters narrows the candidate set before scoring. OwnerKey and DocType are
// equality filters; Tags are advisory and only boost ranking.
type Filters struct {
	OwnerKey string
	DocType  string
	Tags     []string
}

// Scorer scores a query against every candidate. Implementations must return
// one score per candidate, in candidate order, and must be pure.
type Scorer interface {
	Score(query string, candidates []Candidate) []float64
}

// TFIDFScorer scores with the sparse TF-IDF engine. IDF is computed over
// exactly the candidate set passed in, so rarity reflects the current
// filtered view rather than the global corpus.
type TFIDFScorer struct{}

// Score implements Scorer.
func (TFIDFScorer) Score(query string, candidates []Candidate) []float64 {
	vectors := make([]model.TermVector, len(candidates))
	for i, c := range candidates {
		vec := c.Chunk.Vector
		if vec == nil {
			vec = TermFrequency(Tokenize(c.Chunk.Text))
		}
		vectors[i] = vec
	}

	idf := InverseDocumentFrequency(vectors)
	queryVec := BuildVector(query, idf)

	scores := make([]float64, len(candidates))
	for i, vec := range vectors {
		scores[i] = CosineSimilarity(queryVec, ApplyIDF(vec, idf))
	}
	return scores
}

// Embedder turns text into a dense embedding. Implementations live outside
// the core (they may call a network service); the scorer itself stays pure
// over the vectors it is handed.
type Embedder interface {
	Embed(text string) ([]float32, error)
}

// DenseScorer is the drop-in dense-embedding alternative to TFIDFScorer.
// Candidates without a stored embedding score zero.
type DenseScorer struct {
	Embedder Embedder
}

// Score implements Scorer.
func (s DenseScorer) Score(query string, candidates []Candidate) []float64 {
	scores := make([]float64, len(candidates))

	queryVec, err := s.Embedder.Embed(query)
	if err != nil || len(queryVec) == 0 {
		return scores
	}

	for i, c := range candidates {
		scores[i] = DenseCosine(queryVec, c.Chunk.Embedding)
	}
	return scores
}

// Index ranks candidate chunks against a query. It is parametric over the
// vector representation via its Scorer.
type Index struct {
	scorer Scorer
}

// NewIndex creates an index with the default TF-IDF scorer.
func NewIndex() *Index {
	return &Index{scorer: TFIDFScorer{}}
}

// NewIndexWithScorer creates an index with a custom scorer.
func NewIndexWithScorer(scorer Scorer) *Index {
	return &Index{scorer: scorer}
}

// Search filters the candidates, scores the query against each survivor,
// applies the soft tag boost, and returns the top-K ranked items. It never
// errors: an empty query, empty corpus or fully-filtered-out view all yield
// an empty result.
func (idx *Index) Search(query string, candidates []Candidate, filters Filters, topK int) []model.RetrievedItem {
	if strings.TrimSpace(query) == "" || topK <= 0 {
		return nil
	}

	selected := selectCandidates(candidates, filters)
	if len(selected) == 0 {
		return nil
	}

	scores := idx.scorer.Score(query, selected)

	items := make([]model.RetrievedItem, len(selected))
	for i, c := range selected {
		score := scores[i]
		if len(filters.Tags) > 0 {
			score *= 1 + tagBoostFactor*float64(matchingTags(filters.Tags, c.Metadata.Tags))
		}
		items[i] = model.RetrievedItem{
			DocumentID: c.Chunk.DocumentID,
			ChunkIndex: c.Chunk.Index,
			Score:      score,
			Text:       c.Chunk.Text,
			Start:      c.Chunk.Start,
			End:        c.Chunk.End,
			Metadata:   c.Metadata,
		}
	}

	// Stable sort keeps the original candidate order on ties, so results are
	// deterministic whenever the candidate ordering is.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if len(items) > topK {
		items = items[:topK]
	}
	return items
}

// selectCandidates applies the equality filters. An ownerKey filter also
// admits candidates with no owner set: those are unscoped/shared documents.
func selectCandidates(candidates []Candidate, filters Filters) []Candidate {
	var selected []Candidate
	for _, c := range candidates {
		if filters.DocType != "" && c.Metadata.DocType != filters.DocType {
			continue
		}
		if filters.OwnerKey != "" && c.Metadata.OwnerKey != "" && c.Metadata.OwnerKey != filters.OwnerKey {
			continue
		}
		selected = append(selected, c)
	}
	return selected
}

func matchingTags(want, have []string) int {
	if len(want) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]bool, len(have))
	for _, tag := range have {
		set[tag] = true
	}
	count := 0
	for _, tag := range want {
		if set[tag] {
			count++
		}
	}
	return count
}
