package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pkarels/appealsmith/internal/chunker"
	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/store"
	"github.com/pkarels/appealsmith/internal/textindex"
)

// Options control how a document is ingested.
type Options struct {
	DocType  string // Empty means classify from name/content
	OwnerKey string
	Tags     []string
}

// Ingestor reads, chunks, vectorizes and persists documents.
type Ingestor struct {
	store      store.Store
	chunker    *chunker.Chunker
	readers    []Reader
	classifier *Classifier
}

// NewIngestor creates an ingestor with the built-in readers and classifier.
func NewIngestor(st store.Store, ch *chunker.Chunker) *Ingestor {
	return &Ingestor{
		store:      st,
		chunker:    ch,
		readers:    DefaultReaders(),
		classifier: NewClassifier(),
	}
}

// IngestFile reads a file, extracts its text and ingests it. Returns the
// stored document and the number of chunks produced.
func (ing *Ingestor) IngestFile(ctx context.Context, path string, opts Options) (*model.Document, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	reader, err := readerFor(ing.readers, path)
	if err != nil {
		return nil, 0, err
	}

	name := filepath.Base(path)
	text, err := reader.Read(name, data)
	if err != nil {
		return nil, 0, fmt.Errorf("extract %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	// Document ids are stable per source path, so re-ingesting a file
	// supersedes its previous chunks instead of duplicating them.
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()

	return ing.IngestText(ctx, id, name, text, opts)
}

// IngestText chunks and persists already-extracted text under the given
// document id. Empty or whitespace-only text stores the document record but
// produces zero chunks.
func (ing *Ingestor) IngestText(ctx context.Context, id, name, text string, opts Options) (*model.Document, int, error) {
	docType := opts.DocType
	if docType == "" {
		docType = ing.classifier.Classify(name, text)
	}

	doc := model.Document{
		ID:   id,
		Name: name,
		Text: text,
		Metadata: model.Metadata{
			DocType:   docType,
			OwnerKey:  opts.OwnerKey,
			Tags:      opts.Tags,
			CreatedAt: time.Now().UTC(),
		},
	}

	if err := ing.store.PutDocument(ctx, doc); err != nil {
		return nil, 0, fmt.Errorf("store document: %w", err)
	}

	chunks := ing.chunker.Chunk(doc.ID, text)
	for i := range chunks {
		chunks[i].Vector = textindex.TermFrequency(textindex.Tokenize(chunks[i].Text))
	}

	if err := ing.store.PutChunks(ctx, doc.ID, chunks); err != nil {
		return nil, 0, fmt.Errorf("store chunks: %w", err)
	}

	return &doc, len(chunks), nil
}
