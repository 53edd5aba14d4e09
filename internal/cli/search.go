package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkarels/appealsmith/internal/retrieval"
	"github.com/pkarels/appealsmith/internal/textindex"
)

var (
	searchOwner   string
	searchDocType string
	searchTags    []string
	searchTopK    int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge store",
	Long: `Search ranks stored chunks against a free-text query using TF-IDF
cosine similarity, optionally restricted to one document type and owner.

Example:
  appealsmith search "physical therapy visit limit" --doc-type policy
  appealsmith search "CPT 97110 medical necessity" --owner case-1024 -k 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchOwner, "owner", "", "restrict to documents owned by this key (unscoped documents always match)")
	searchCmd.Flags().StringVar(&searchDocType, "doc-type", "", "restrict to one document type")
	searchCmd.Flags().StringSliceVar(&searchTags, "tags", nil, "boost chunks carrying these tags")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	retriever := retrieval.NewRetriever(st, textindex.NewIndex())
	filters := textindex.Filters{
		OwnerKey: searchOwner,
		DocType:  searchDocType,
		Tags:     searchTags,
	}

	items, err := retriever.Search(context.Background(), args[0], filters, searchTopK)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, item := range items {
		fmt.Printf("%d. [%.4f] %s #%d (%s)\n", i+1, item.Score, item.DocumentID, item.ChunkIndex, item.Metadata.DocType)
		fmt.Printf("   %s\n", excerpt(item.Text, 160))
	}
	return nil
}

// excerpt returns a single-line preview of chunk text.
func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}
