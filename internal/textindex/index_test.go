package textindex

import (
	"reflect"
	"testing"

	"github.com/pkarels/appealsmith/internal/model"
)

func makeCandidate(docID string, idx int, text, docType, owner string, tags ...string) Candidate {
	return Candidate{
		Chunk: model.Chunk{
			DocumentID: docID,
			Index:      idx,
			Text:       text,
			Vector:     TermFrequency(Tokenize(text)),
		},
		Metadata: model.Metadata{DocType: docType, OwnerKey: owner, Tags: tags},
	}
}

func TestIndex_Search_RanksRelevantFirst(t *testing.T) {
	idx := NewIndex()
	candidates := []Candidate{
		makeCandidate("doc-a", 0, "physical therapy coverage requires documented medical necessity", model.DocTypePolicy, ""),
		makeCandidate("doc-b", 0, "the cafeteria menu changes every tuesday and thursday", model.DocTypeOther, ""),
	}

	items := idx.Search("physical therapy medical necessity", candidates, Filters{}, 2)

	if len(items) != 2 {
		t.Fatalf("expected 2 results, got %d", len(items))
	}
	if items[0].DocumentID != "doc-a" {
		t.Errorf("expected doc-a ranked first, got %s", items[0].DocumentID)
	}
	if items[0].Score <= items[1].Score {
		t.Errorf("expected strictly higher score for relevant chunk: %v vs %v", items[0].Score, items[1].Score)
	}
	for _, item := range items {
		if item.Score < 0 || item.Score > 1.2 {
			t.Errorf("score %v outside expected range", item.Score)
		}
	}
}

func TestIndex_Search_EmptyQueryAndTopK(t *testing.T) {
	idx := NewIndex()
	candidates := []Candidate{makeCandidate("doc-a", 0, "some text here", "", "")}

	if items := idx.Search("   ", candidates, Filters{}, 5); items != nil {
		t.Errorf("expected nil for blank query, got %v", items)
	}
	if items := idx.Search("text", candidates, Filters{}, 0); items != nil {
		t.Errorf("expected nil for topK=0, got %v", items)
	}
}

func TestIndex_Search_DocTypeFilter(t *testing.T) {
	idx := NewIndex()
	candidates := []Candidate{
		makeCandidate("policy-1", 0, "therapy visit limits", model.DocTypePolicy, ""),
		makeCandidate("record-1", 0, "therapy visit notes", model.DocTypeMedicalRecord, ""),
	}

	items := idx.Search("therapy visit", candidates, Filters{DocType: model.DocTypePolicy}, 10)

	if len(items) != 1 {
		t.Fatalf("expected 1 result, got %d", len(items))
	}
	if items[0].DocumentID != "policy-1" {
		t.Errorf("expected policy-1, got %s", items[0].DocumentID)
	}
}

func TestIndex_Search_OwnerScoping(t *testing.T) {
	idx := NewIndex()
	candidates := []Candidate{
		makeCandidate("mine", 0, "therapy criteria", "", "case-1"),
		makeCandidate("theirs", 0, "therapy criteria", "", "case-2"),
		makeCandidate("shared", 0, "therapy criteria", "", ""),
	}

	items := idx.Search("therapy criteria", candidates, Filters{OwnerKey: "case-1"}, 10)

	got := map[string]bool{}
	for _, item := range items {
		got[item.DocumentID] = true
	}
	if !got["mine"] || !got["shared"] {
		t.Errorf("expected own and unscoped documents, got %v", got)
	}
	if got["theirs"] {
		t.Error("other owner's document must be excluded")
	}
}

func TestIndex_Search_TagBoost(t *testing.T) {
	idx := NewIndex()
	// Identical text so base scores tie; only the tag boost separates them.
	candidates := []Candidate{
		makeCandidate("plain", 0, "therapy coverage criteria", "", ""),
		makeCandidate("tagged", 0, "therapy coverage criteria", "", "", "aetna", "pt"),
	}

	items := idx.Search("therapy coverage", candidates, Filters{Tags: []string{"aetna", "pt"}}, 2)

	if items[0].DocumentID != "tagged" {
		t.Errorf("expected tagged chunk first, got %s", items[0].DocumentID)
	}
	ratio := items[0].Score / items[1].Score
	if ratio < 1.19 || ratio > 1.21 {
		t.Errorf("expected 1.2x boost for two matching tags, got ratio %v", ratio)
	}
}

func TestIndex_Search_Deterministic(t *testing.T) {
	idx := NewIndex()
	var candidates []Candidate
	texts := []string{
		"physical therapy sessions covered per calendar year",
		"prior authorization required for continued therapy",
		"medical necessity review of therapy claims",
	}
	for i, text := range texts {
		candidates = append(candidates, makeCandidate("doc", i, text, "", ""))
	}

	first := idx.Search("therapy authorization", candidates, Filters{}, 3)
	for run := 0; run < 5; run++ {
		again := idx.Search("therapy authorization", candidates, Filters{}, 3)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed from first run", run)
		}
	}
}

func TestIndex_Search_TopKTruncation(t *testing.T) {
	idx := NewIndex()
	var candidates []Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, makeCandidate("doc", i, "therapy coverage text", "", ""))
	}

	items := idx.Search("therapy", candidates, Filters{}, 3)
	if len(items) != 3 {
		t.Errorf("expected 3 results, got %d", len(items))
	}
}

func TestDenseScorer_NoEmbeddingScoresZero(t *testing.T) {
	idx := NewIndexWithScorer(DenseScorer{Embedder: stubEmbedder{vec: []float32{1, 0}}})

	candidates := []Candidate{
		{Chunk: model.Chunk{DocumentID: "a", Text: "x", Embedding: []float32{1, 0}}},
		{Chunk: model.Chunk{DocumentID: "b", Text: "y"}},
	}

	items := idx.Search("query", candidates, Filters{}, 2)
	if items[0].DocumentID != "a" || items[0].Score <= 0 {
		t.Errorf("expected embedded chunk to score positive, got %+v", items[0])
	}
	if items[1].Score != 0 {
		t.Errorf("expected missing embedding to score 0, got %v", items[1].Score)
	}
}

type stubEmbedder struct {
	vec []float32
}

func (s stubEmbedder) Embed(text string) ([]float32, error) {
	return s.vec, nil
}
