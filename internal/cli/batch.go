package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptlens/promptlens/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple prompts from a file in parallel",
	Long: `Batch analyzes many prompts concurrently:
- Read prompts from the input file (one per line, # for comments)
- Analyze prompts in parallel with a configurable worker count
- Print a per-prompt score line and a summary

Example:
  promptlens batch prompts.txt
  promptlens batch prompts.txt --concurrency 8 --project ~/src/billing`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&projectPath, "project", "", "project path the prompts belong to")
	batchCmd.Flags().BoolVar(&noHistory, "no-history", false, "skip the analysis log")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	prompts, err := worker.ReadPrompts(file)
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts found in %s", file)
	}

	eng, _, err := buildEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	fmt.Fprintf(os.Stderr, "Analyzing %d prompts with %d workers...\n\n", len(prompts), concurrency)

	processor := worker.NewBatchProcessor(eng, concurrency)
	results := processor.Process(ctx, prompts, sessionContext())

	total, cancelled := 0, 0
	scoreSum := 0
	for _, r := range results {
		if r.Err != nil {
			cancelled++
			fmt.Fprintf(os.Stderr, "✗ %.60s: %v\n", r.Prompt, r.Err)
			continue
		}
		total++
		score := r.Result.Evaluation.OverallDisplay()
		scoreSum += score
		fmt.Printf("%3d/100 (%s)  %.60s\n", score, r.Result.Evaluation.Grade, r.Prompt)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Analyzed:   %d prompts\n", total)
	if cancelled > 0 {
		fmt.Fprintf(os.Stderr, "  Cancelled:  %d\n", cancelled)
	}
	if total > 0 {
		fmt.Fprintf(os.Stderr, "  Average:    %d/100\n", scoreSum/total)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
