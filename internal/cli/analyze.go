package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptlens/promptlens/internal/engine"
	"github.com/promptlens/promptlens/internal/model"
)

var (
	projectPath string
	ideName     string
	withAI      bool
	jsonOutput  bool
	noHistory   bool
	noCache     bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [prompt]",
	Short: "Score a prompt and generate improved rewrites",
	Long: `Analyze scores a prompt against the six GOLDEN dimensions:
- Goal: is the objective stated?
- Output: is the expected format described?
- Limits: are constraints and boundaries given?
- Data: is relevant context provided?
- Evaluation: are success criteria defined?
- Next: are follow-up steps indicated?

It reports a 0-100 score with a letter grade, the top issues, and three
rule-based rewrites. With --ai and a configured provider, an AI rewrite
is generated and kept only if it outscores the rule-based one.

Example:
  promptlens analyze "fix the bug in my parser"
  promptlens analyze - < prompt.txt
  promptlens analyze "fix it" --project ~/src/billing --ai
  promptlens analyze "fix it" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Context flags
	analyzeCmd.Flags().StringVar(&projectPath, "project", "", "project path the prompt belongs to")
	analyzeCmd.Flags().StringVar(&ideName, "ide", "", "IDE or editor name for session context")

	// Output flags
	analyzeCmd.Flags().BoolVar(&withAI, "ai", false, "resolve the AI rewrite before printing (requires a configured provider)")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
	analyzeCmd.Flags().BoolVar(&noHistory, "no-history", false, "skip the analysis log")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the evaluation cache")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider override (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model override")
}

// readPromptArg resolves the prompt text from the argument or stdin. A lone
// "-" or an empty argument list reads stdin.
func readPromptArg(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no prompt given: pass it as an argument or on stdin")
	}
	return text, nil
}

// buildEngine assembles an engine from config plus command-line overrides.
func buildEngine() (*engine.Engine, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = "" // re-resolve the key for the overridden provider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if noHistory {
		cfg.History.Enabled = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return engine.New(cfg, newLogger()), cfg, nil
}

func sessionContext() *model.SessionContext {
	if projectPath == "" && ideName == "" {
		return nil
	}
	return &model.SessionContext{
		ProjectPath: projectPath,
		IDEName:     ideName,
		Source:      model.SourceAppPath,
		Confidence:  model.ContextHigh,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing %d characters\n", len(text))
		if cfg.LLM.Provider != "" {
			fmt.Fprintf(os.Stderr, "AI provider: %s\n", cfg.LLM.Provider)
		}
		fmt.Fprintln(os.Stderr)
	}

	result := eng.Analyze(ctx, text, sctx)

	// Resolve the AI slot synchronously when asked; otherwise drop the
	// placeholder so the printed result is complete.
	if withAI && eng.AIConfigured() {
		resolveCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.LLM.Timeout+5)*time.Second)
		result.Candidates[0] = eng.ResolveAIVariant(resolveCtx, text, result.Evaluation, sctx)
		cancel()
	} else if len(result.Candidates) > 0 && result.Candidates[0].Loading {
		result.Candidates = result.Candidates[1:]
	}

	if jsonOutput || cfg.Output.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	renderResult(os.Stdout, result)
	return nil
}
