package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/promptlens/promptlens/internal/model"
)

// Analyzer defines the interface for analyzing one prompt.
type Analyzer interface {
	Analyze(ctx context.Context, text string, sctx *model.SessionContext) *model.AnalysisResult
}

// AnalyzeJob represents a single-prompt analysis job
type AnalyzeJob struct {
	Prompt   string
	Context  *model.SessionContext
	Analyzer Analyzer
}

// Execute runs the analysis. Analyze never fails, so the job result carries
// no error unless the pool context was cancelled first.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &AnalyzeResult{Prompt: j.Prompt, Err: err}
	}
	return &AnalyzeResult{
		Prompt: j.Prompt,
		Result: j.Analyzer.Analyze(ctx, j.Prompt, j.Context),
	}
}

// AnalyzeResult represents the result of an analysis job
type AnalyzeResult struct {
	Prompt string
	Result *model.AnalysisResult
	Err    error
}

// GetError returns the error from the analysis result
func (r *AnalyzeResult) GetError() error {
	return r.Err
}

// BatchProcessor analyzes multiple prompts concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ReadPrompts reads one prompt per line from a file, skipping blank lines and
// lines starting with #.
func ReadPrompts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prompts file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var prompts []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prompts = append(prompts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return prompts, nil
}

// Process analyzes all prompts and returns results in completion order.
func (b *BatchProcessor) Process(ctx context.Context, prompts []string, sctx *model.SessionContext) []*AnalyzeResult {
	pool := NewPool(b.concurrency)
	pool.Start()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, prompt := range prompts {
		pool.Submit(&AnalyzeJob{Prompt: prompt, Context: sctx, Analyzer: b.analyzer})
	}

	results := pool.Wait()
	close(done)
	out := make([]*AnalyzeResult, 0, len(results))
	for _, r := range results {
		if ar, ok := r.(*AnalyzeResult); ok {
			out = append(out, ar)
		}
	}
	return out
}
