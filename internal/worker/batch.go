package worker

import (
	"context"

	"github.com/pkarels/appealsmith/internal/ingest"
	"github.com/pkarels/appealsmith/internal/model"
)

// Ingester ingests a single file.
type Ingester interface {
	IngestFile(ctx context.Context, path string, opts ingest.Options) (*model.Document, int, error)
}

// IngestJob ingests one file through the shared ingester.
type IngestJob struct {
	Path     string
	Options  ingest.Options
	Ingester Ingester
}

// Execute implements Job.
func (j *IngestJob) Execute(ctx context.Context) Result {
	doc, chunks, err := j.Ingester.IngestFile(ctx, j.Path, j.Options)
	return &IngestResult{
		Path:     j.Path,
		Document: doc,
		Chunks:   chunks,
		Error:    err,
	}
}

// IngestResult is the outcome of one file ingestion.
type IngestResult struct {
	Path     string
	Document *model.Document
	Chunks   int
	Error    error
}

// GetError implements Result.
func (r *IngestResult) GetError() error {
	return r.Error
}

// BatchIngestor ingests many files concurrently.
type BatchIngestor struct {
	ingester    Ingester
	concurrency int
}

// NewBatchIngestor creates a batch ingestor with the given concurrency.
func NewBatchIngestor(ingester Ingester, concurrency int) *BatchIngestor {
	return &BatchIngestor{
		ingester:    ingester,
		concurrency: concurrency,
	}
}

// IngestPaths ingests every path through the worker pool and returns one
// result per path. Individual failures are reported in the results, never
// raised: one unreadable file must not sink the batch.
func (b *BatchIngestor) IngestPaths(ctx context.Context, paths []string, opts ingest.Options) []*IngestResult {
	if len(paths) == 0 {
		return nil
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&IngestJob{Path: path, Options: opts, Ingester: b.ingester})
	}

	results := make([]*IngestResult, 0, len(paths))
	for _, result := range pool.Wait() {
		if r, ok := result.(*IngestResult); ok {
			results = append(results, r)
		}
	}
	return results
}
