package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkarels/appealsmith/internal/chunker"
	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/store"
	"github.com/pkarels/appealsmith/internal/textindex"
)

func newTestIngestor() (*Ingestor, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewIngestor(st, chunker.New(chunker.WithSize(200), chunker.WithOverlap(40))), st
}

func TestIngestor_IngestText(t *testing.T) {
	ing, st := newTestIngestor()
	ctx := context.Background()

	text := strings.Repeat("Coverage criteria for physical therapy are documented. ", 20)
	doc, chunks, err := ing.IngestText(ctx, "doc-1", "policy.txt", text, Options{OwnerKey: "owner-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Metadata.DocType != model.DocTypePolicy {
		t.Errorf("expected name-based classification to policy, got %s", doc.Metadata.DocType)
	}
	if chunks < 2 {
		t.Errorf("expected multiple chunks for long text, got %d", chunks)
	}

	candidates, err := st.ListCandidates(ctx, textindex.Filters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(candidates) != chunks {
		t.Errorf("expected %d stored chunks, got %d", chunks, len(candidates))
	}
	for _, c := range candidates {
		if len(c.Chunk.Vector) == 0 {
			t.Errorf("chunk %d stored without a term vector", c.Chunk.Index)
		}
		if c.Metadata.OwnerKey != "owner-1" {
			t.Errorf("chunk %d lost its owner key", c.Chunk.Index)
		}
	}
}

func TestIngestor_ExplicitDocTypeWins(t *testing.T) {
	ing, _ := newTestIngestor()

	doc, _, err := ing.IngestText(context.Background(), "doc-1", "policy.txt",
		"some text", Options{DocType: model.DocTypePrecedent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata.DocType != model.DocTypePrecedent {
		t.Errorf("explicit type must win over classification, got %s", doc.Metadata.DocType)
	}
}

func TestIngestor_EmptyTextStoresNoChunks(t *testing.T) {
	ing, _ := newTestIngestor()

	_, chunks, err := ing.IngestText(context.Background(), "doc-1", "empty.txt", "   ", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != 0 {
		t.Errorf("expected 0 chunks for blank text, got %d", chunks)
	}
}

func TestIngestor_IngestFile_StableID(t *testing.T) {
	ing, _ := newTestIngestor()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "denial.txt")
	if err := os.WriteFile(path, []byte("This claim has been denied for lack of documentation."), 0644); err != nil {
		t.Fatal(err)
	}

	doc1, _, err := ing.IngestFile(ctx, path, Options{})
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	doc2, _, err := ing.IngestFile(ctx, path, Options{})
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	if doc1.ID != doc2.ID {
		t.Errorf("re-ingesting the same path must reuse the id: %s vs %s", doc1.ID, doc2.ID)
	}
	if doc1.Metadata.DocType != model.DocTypeCorrespondence {
		t.Errorf("expected denial file classified as correspondence, got %s", doc1.Metadata.DocType)
	}
}

func TestIngestor_UnsupportedExtension(t *testing.T) {
	ing, _ := newTestIngestor()

	path := filepath.Join(t.TempDir(), "scan.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := ing.IngestFile(context.Background(), path, Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestClassifier_ContentRules(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"a.txt", "The following covered services are subject to coverage criteria.", model.DocTypePolicy},
		{"b.txt", "Chief complaint: lower back pain. Treatment plan attached.", model.DocTypeMedicalRecord},
		{"c.txt", "This claim was denied because the service was not authorized.", model.DocTypeCorrespondence},
		{"d.txt", "Upon review, the appeal was overturned and benefits granted.", model.DocTypePrecedent},
		{"e.txt", "Dear [PATIENT NAME], your provider [PROVIDER] submitted a claim.", model.DocTypeTemplate},
		{"f.txt", "Unremarkable content with no markers at all.", model.DocTypeOther},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.name, tc.content); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.content, got, tc.want)
		}
	}
}

func TestHTMLReader_ExtractsVisibleText(t *testing.T) {
	page := `<html><head><title>Ignored</title><style>p{color:red}</style></head>
<body><h1>Coverage Policy</h1><p>Physical therapy is covered.</p>
<script>alert("nope")</script><p>Prior authorization required.</p></body></html>`

	text, err := HTMLReader{}.Read("policy.html", []byte(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Coverage Policy", "Physical therapy is covered.", "Prior authorization required."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in extracted text %q", want, text)
		}
	}
	for _, banned := range []string{"alert", "color:red", "Ignored"} {
		if strings.Contains(text, banned) {
			t.Errorf("non-visible content %q leaked into %q", banned, text)
		}
	}
	if !strings.Contains(text, "\n\n") {
		t.Error("expected paragraph breaks between block elements")
	}
}

func TestReaderFor(t *testing.T) {
	readers := DefaultReaders()

	if _, err := readerFor(readers, "notes.md"); err != nil {
		t.Errorf("expected markdown reader, got error %v", err)
	}
	if _, err := readerFor(readers, "page.HTML"); err != nil {
		t.Errorf("extension matching must be case-insensitive, got %v", err)
	}
	if _, err := readerFor(readers, "scan.docx"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
