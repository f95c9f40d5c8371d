package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// improveCmd represents the improve command
var improveCmd = &cobra.Command{
	Use:   "improve [prompt]",
	Short: "Print the best rewrite of a prompt",
	Long: `Improve analyzes a prompt and prints only the strongest rewrite,
suitable for piping straight back into another tool.

With a configured LLM provider the AI rewrite is used when it outscores
the rule-based one; otherwise the balanced rule-based rewrite is printed.

Example:
  promptlens improve "fix the bug" | pbcopy
  promptlens improve - < prompt.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImprove,
}

func init() {
	rootCmd.AddCommand(improveCmd)

	improveCmd.Flags().StringVar(&projectPath, "project", "", "project path the prompt belongs to")
	improveCmd.Flags().StringVar(&ideName, "ide", "", "IDE or editor name for session context")
	improveCmd.Flags().BoolVar(&noHistory, "no-history", false, "skip the analysis log")
}

func runImprove(cmd *cobra.Command, args []string) error {
	text, err := readPromptArg(args)
	if err != nil {
		return err
	}

	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	ctx := context.Background()
	sctx := sessionContext()
	result := eng.Analyze(ctx, text, sctx)

	// The balanced rule-based rewrite is the default answer.
	best := result.Candidates[len(result.Candidates)-2]

	if eng.AIConfigured() {
		resolveCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.LLM.Timeout+5)*time.Second)
		ai := eng.ResolveAIVariant(resolveCtx, text, result.Evaluation, sctx)
		cancel()
		if ai.Rewritten != "" {
			best = ai
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Score: %d/100 (%s), using the %s rewrite\n",
			result.Evaluation.OverallDisplay(), result.Evaluation.Grade, best.Kind)
	}

	fmt.Println(best.Rewritten)
	return nil
}
