package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pkarels/appealsmith/internal/llm"
	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/pipeline"
	"github.com/pkarels/appealsmith/internal/retrieval"
	"github.com/pkarels/appealsmith/internal/textindex"
)

var (
	composeJSON     string
	composeMD       string
	composeTopK     int
	composeMaxEv    int
	composeNoFooter bool
	llmEnabled      bool
	llmProvider     string
	llmModel        string
)

// composeCmd represents the compose command
var composeCmd = &cobra.Command{
	Use:   "compose <case.yaml>",
	Short: "Compose a grounded appeal letter for a case",
	Long: `Compose retrieves evidence for a case, assembles the appeal letter,
optionally drafts section prose through an LLM, and verifies grounding.

Numeric claims without supporting citations are marked inline with
[NEEDS EVIDENCE: ...] and listed in the report's evidence gaps. The LLM
draft, when enabled, may only cite the retrieved evidence; it can never
add facts of its own.

Example:
  appealsmith compose case.yaml --json report.json --md letter.md
  appealsmith compose case.yaml --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)

	// Output flags
	composeCmd.Flags().StringVar(&composeJSON, "json", "report.json", "output JSON report path")
	composeCmd.Flags().StringVar(&composeMD, "md", "", "output Markdown letter path (optional)")
	composeCmd.Flags().BoolVar(&composeNoFooter, "no-footer", false, "disable footer in Markdown letters")

	// Retrieval flags
	composeCmd.Flags().IntVar(&composeTopK, "top-k", 0, "per-query retrieval depth (0 = configured default)")
	composeCmd.Flags().IntVar(&composeMaxEv, "max-evidence", 0, "overall evidence cap (0 = configured default)")

	// LLM flags
	composeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM section drafting")
	composeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	composeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runCompose(cmd *cobra.Command, args []string) error {
	record, err := loadCase(args[0])
	if err != nil {
		return err
	}

	cfg := loadConfig()
	if composeTopK > 0 {
		cfg.Retrieval.PerQueryK = composeTopK
	}
	if composeMaxEv > 0 {
		cfg.Retrieval.MaxEvidence = composeMaxEv
	}
	cfg.Output.IncludeFooter = !composeNoFooter

	if llmEnabled {
		if err := configureLLM(cfg); err != nil {
			return err
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	retriever := retrieval.NewRetriever(st, textindex.NewIndex())
	aggregator := retrieval.NewAggregator(retriever, cfg.Retrieval.PerQueryK, cfg.Retrieval.MaxEvidence)

	var drafter *llm.Drafter
	if llmEnabled {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return fmt.Errorf("configure LLM: %w", err)
		}
		drafter = llm.NewDrafter(provider, cfg.LLM.RequestsPerSec)
	}

	composer := pipeline.NewComposer(aggregator, drafter, cfg.LLM.StrictEvidence)

	report, err := composer.Compose(context.Background(), *record)
	if err != nil {
		return fmt.Errorf("compose failed: %w", err)
	}

	if composeJSON != "" {
		data, err := pipeline.RenderJSON(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(composeJSON, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", composeJSON, err)
		}
	}
	if composeMD != "" {
		md := pipeline.RenderMarkdown(report, cfg.Output.IncludeFooter)
		if err := os.WriteFile(composeMD, []byte(md), 0644); err != nil {
			return fmt.Errorf("write %s: %w", composeMD, err)
		}
	}

	pipeline.WriteSummary(os.Stdout, report)
	return nil
}

// loadCase reads and minimally validates a case record from YAML.
func loadCase(path string) (*model.CaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case %s: %w", path, err)
	}

	var record model.CaseRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse case %s: %w", path, err)
	}
	if record.PayerName == "" || record.Category == "" {
		return nil, fmt.Errorf("case %s: payer_name and category are required", path)
	}
	return &record, nil
}

// configureLLM applies the LLM flags and resolves API keys from environment
// variables, never from flags.
func configureLLM(cfg *model.Config) error {
	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	cfg.LLM.StrictEvidence = true // Always enforce

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
