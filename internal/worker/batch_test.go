package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/promptlens/promptlens/internal/model"
)

type stubAnalyzer struct{}

func (s *stubAnalyzer) Analyze(ctx context.Context, text string, sctx *model.SessionContext) *model.AnalysisResult {
	return &model.AnalysisResult{Prompt: text}
}

func TestReadPrompts_SkipsBlanksAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.txt")
	content := "# header comment\n\nwrite a parser\n  \nfix the build\n# trailing\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	prompts, err := ReadPrompts(path)
	if err != nil {
		t.Fatalf("ReadPrompts failed: %v", err)
	}

	if len(prompts) != 2 {
		t.Fatalf("Expected 2 prompts, got %d: %v", len(prompts), prompts)
	}
	if prompts[0] != "write a parser" || prompts[1] != "fix the build" {
		t.Errorf("Unexpected prompts: %v", prompts)
	}
}

func TestReadPrompts_MissingFile(t *testing.T) {
	_, err := ReadPrompts(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestBatchProcessor_AnalyzesEveryPrompt(t *testing.T) {
	processor := NewBatchProcessor(&stubAnalyzer{}, 3)

	prompts := []string{"one", "two", "three", "four", "five"}
	results := processor.Process(context.Background(), prompts, nil)

	if len(results) != len(prompts) {
		t.Fatalf("Expected %d results, got %d", len(prompts), len(results))
	}
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("Unexpected error for %q: %v", r.Prompt, r.Err)
		}
		if r.Result == nil {
			t.Errorf("Missing result for %q", r.Prompt)
		}
		seen[r.Prompt] = true
	}
	for _, p := range prompts {
		if !seen[p] {
			t.Errorf("Prompt %q was not analyzed", p)
		}
	}
}
