package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/verify"
)

var verifyOut string

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <letter.json>",
	Short: "Verify grounding of an existing letter",
	Long: `Verify re-checks an assembled letter (e.g. one edited by hand after
compose): every numeric claim must be covered by a citation snippet or it
gets a [NEEDS EVIDENCE: ...] marker. Verification is idempotent; running
it twice changes nothing.

Example:
  appealsmith verify letter.json --out letter.verified.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyOut, "out", "", "write the patched letter JSON here (default: stdout)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read letter %s: %w", args[0], err)
	}

	var letter model.Letter
	if err := json.Unmarshal(data, &letter); err != nil {
		return fmt.Errorf("parse letter %s: %w", args[0], err)
	}

	result := verify.NewVerifier().Verify(letter.Sections)
	letter.Sections = result.Sections

	out, err := json.MarshalIndent(letter, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal letter: %w", err)
	}

	if verifyOut != "" {
		if err := os.WriteFile(verifyOut, out, 0644); err != nil {
			return fmt.Errorf("write %s: %w", verifyOut, err)
		}
	} else {
		fmt.Println(string(out))
	}

	fmt.Fprintf(os.Stderr, "Grounding: %d sentences checked, %d claims flagged, %d covered, %d markers inserted\n",
		result.Stats.SentencesChecked, result.Stats.ClaimsFlagged,
		result.Stats.ClaimsCovered, result.Stats.MarkersInserted)
	for _, gap := range result.EvidenceGaps {
		fmt.Fprintf(os.Stderr, "NEEDS EVIDENCE: %s\n", gap)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", warning)
	}
	return nil
}
