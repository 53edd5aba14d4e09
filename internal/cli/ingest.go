package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkarels/appealsmith/internal/chunker"
	"github.com/pkarels/appealsmith/internal/ingest"
	"github.com/pkarels/appealsmith/internal/worker"
)

var (
	ingestDocType     string
	ingestOwner       string
	ingestTags        []string
	ingestChunkSize   int
	ingestOverlap     int
	ingestConcurrency int
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest documents into the knowledge store",
	Long: `Ingest reads documents (txt, md, html), extracts their text, chunks
them and stores the chunks with term vectors for retrieval.

Directories are walked recursively; files with unsupported extensions are
skipped. Re-ingesting a file replaces its previous chunks.

Example:
  appealsmith ingest ./policies --doc-type policy --owner case-1024
  appealsmith ingest denial.txt records/ --owner case-1024 --tags aetna,pt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestDocType, "doc-type", "", "document type (policy, medical_record, correspondence, precedent, template); classified from content when empty")
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "", "owner key scoping these documents to one case owner")
	ingestCmd.Flags().StringSliceVar(&ingestTags, "tags", nil, "tags attached to the documents")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "target chunk size in characters (0 = configured default)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", 0, "chunk overlap in characters (0 = configured default)")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "parallel ingestion workers (0 = configured default)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if ingestChunkSize > 0 {
		cfg.Chunking.Size = ingestChunkSize
	}
	if ingestOverlap > 0 {
		cfg.Chunking.Overlap = ingestOverlap
	}
	if ingestConcurrency > 0 {
		cfg.Concurrency.IngestWorkers = ingestConcurrency
	}

	paths, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no ingestable files found under %s", strings.Join(args, ", "))
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ch := chunker.New(chunker.WithSize(cfg.Chunking.Size), chunker.WithOverlap(cfg.Chunking.Overlap))
	ingestor := ingest.NewIngestor(st, ch)
	batch := worker.NewBatchIngestor(ingestor, cfg.Concurrency.IngestWorkers)

	opts := ingest.Options{
		DocType:  ingestDocType,
		OwnerKey: ingestOwner,
		Tags:     ingestTags,
	}

	results := batch.IngestPaths(context.Background(), paths, opts)

	var ok, failed int
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		ok++
		if verbose {
			fmt.Printf("✓ %s: %d chunks (%s)\n", result.Path, result.Chunks, result.Document.Metadata.DocType)
		}
	}

	fmt.Printf("Ingested %d/%d files\n", ok, len(results))
	if ok == 0 {
		return fmt.Errorf("all %d files failed", failed)
	}
	return nil
}

// collectFiles expands the argument list: files pass through, directories are
// walked for supported extensions.
func collectFiles(args []string) ([]string, error) {
	supported := map[string]bool{}
	for _, reader := range ingest.DefaultReaders() {
		for _, ext := range reader.Extensions() {
			supported[ext] = true
		}
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if supported[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return paths, nil
}
