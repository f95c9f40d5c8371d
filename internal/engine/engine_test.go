package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/cache"
	"github.com/promptlens/promptlens/internal/classify"
	"github.com/promptlens/promptlens/internal/history"
	"github.com/promptlens/promptlens/internal/llm"
	"github.com/promptlens/promptlens/internal/model"
	"github.com/promptlens/promptlens/internal/rubric"
	"github.com/promptlens/promptlens/internal/variant"
)

// memStore is an in-memory history.Store for tests. Appends may come from the
// persistence goroutine, so access is locked.
type memStore struct {
	mu        sync.Mutex
	records   []model.AnalysisRecord
	readErr   error
	appendErr error
}

func (s *memStore) Append(record *model.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	record.ID = int64(len(s.records) + 1)
	s.records = append(s.records, *record)
	return nil
}

func (s *memStore) ReadAll() ([]model.AnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make([]model.AnalysisRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// countingOracle wraps a real scorer and counts invocations.
type countingOracle struct {
	inner rubric.Oracle
	calls int
}

func (o *countingOracle) Score(text string) model.GuidelineEvaluation {
	o.calls++
	return o.inner.Score(text)
}

// echoProvider returns a fixed rewrite for every request.
type echoProvider struct{ text string }

func (p *echoProvider) Name() string { return "echo" }

func (p *echoProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Text: p.text}, nil
}

func (p *echoProvider) IsAvailable(ctx context.Context) bool { return true }

func testEngine(store history.Store, provider llm.Provider) *Engine {
	oracle := rubric.NewScorer()
	generator := variant.NewGenerator()
	cfg := llm.Config{Timeout: 5, Styles: 1, RequestsPerSecond: 50}
	return &Engine{
		oracle:     oracle,
		classifier: classify.NewKeywordClassifier(),
		generator:  generator,
		selector:   llm.NewSelector(provider, oracle, generator, cfg, nil),
		store:      store,
		config:     model.DefaultConfig(),
		logger:     zap.NewNop(),
	}
}

func TestAnalyze_ProducesCompleteResult(t *testing.T) {
	e := testEngine(nil, nil)

	result := e.Analyze(context.Background(), "fix it", nil)
	if result == nil {
		t.Fatal("Analyze must never return nil")
	}
	if result.Prompt != "fix it" {
		t.Errorf("Prompt not echoed: %q", result.Prompt)
	}
	if result.Evaluation.Grade == "" {
		t.Error("Expected a grade")
	}
	if result.Classification == nil {
		t.Error("Expected a classification")
	}
	if len(result.Issues) == 0 {
		t.Error("A vague two-word prompt should surface issues")
	}

	// Without a provider the candidates are exactly the three rule-based
	// variants in fixed order.
	if len(result.Candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(result.Candidates))
	}
	wantKinds := []model.VariantKind{model.VariantConservative, model.VariantBalanced, model.VariantComprehensive}
	for i, want := range wantKinds {
		if result.Candidates[i].Kind != want {
			t.Errorf("Candidate %d: expected %s, got %s", i, want, result.Candidates[i].Kind)
		}
	}
}

func TestAnalyze_LoadingPlaceholderWhenAIConfigured(t *testing.T) {
	e := testEngine(nil, &echoProvider{text: "better prompt"})

	result := e.Analyze(context.Background(), "fix it", nil)
	if len(result.Candidates) != 4 {
		t.Fatalf("Expected 4 candidates with a provider, got %d", len(result.Candidates))
	}
	first := result.Candidates[0]
	if first.Kind != model.VariantAI || !first.Loading {
		t.Errorf("Expected a loading ai placeholder at index 0, got %+v", first)
	}
	if first.Rewritten != "" {
		t.Error("Placeholder must not carry a rewrite")
	}
}

func TestAnalyze_PersistsRecord(t *testing.T) {
	store := &memStore{}
	e := testEngine(store, nil)

	result := e.Analyze(context.Background(), "fix it", &model.SessionContext{ProjectPath: "/home/dev/proj"})
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, _ := store.ReadAll()
	if len(records) != 1 {
		t.Fatalf("Expected 1 persisted record, got %d", len(records))
	}
	rec := records[0]
	if rec.PromptText != "fix it" {
		t.Errorf("PromptText mismatch: %q", rec.PromptText)
	}
	if rec.OverallScore != result.Evaluation.OverallDisplay() {
		t.Errorf("Recorded score %d does not match evaluation %d", rec.OverallScore, result.Evaluation.OverallDisplay())
	}
	if rec.ImprovedPrompt != result.Candidates[1].Rewritten {
		t.Error("Recorded improved prompt should be the balanced rewrite")
	}
	if rec.ProjectPath != "/home/dev/proj" {
		t.Errorf("ProjectPath mismatch: %q", rec.ProjectPath)
	}
	if rec.Intent == "" || rec.Category == "" {
		t.Errorf("Classification not recorded: %+v", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Error("Timestamp not stamped")
	}
}

func TestAnalyze_HistoryEnrichment(t *testing.T) {
	store := &memStore{}
	now := time.Now().UTC()
	for i, score := range []int{50, 60} {
		store.records = append(store.records, model.AnalysisRecord{
			ID:           int64(i + 1),
			PromptText:   "earlier",
			Timestamp:    now.Add(time.Duration(i-3) * 24 * time.Hour),
			OverallScore: score,
			Grade:        model.GradeForScore(score),
			ProjectPath:  "/home/dev/proj",
			Category:     "coding",
		})
	}
	e := testEngine(store, nil)

	result := e.Analyze(context.Background(), "fix it", &model.SessionContext{ProjectPath: "/home/dev/proj"})
	if result.ComparisonWithHistory == nil {
		t.Fatal("Expected a history comparison for a known project")
	}
	if result.ComparisonWithHistory.SampleCount != 2 {
		t.Errorf("Expected 2 samples, got %d", result.ComparisonWithHistory.SampleCount)
	}
	if result.ComparisonWithHistory.ProjectAverage != 55 {
		t.Errorf("Expected project average 55, got %f", result.ComparisonWithHistory.ProjectAverage)
	}
	_ = e.Close()
}

func TestAnalyze_HistoryReadFailureDegrades(t *testing.T) {
	store := &memStore{readErr: errors.New("disk gone")}
	e := testEngine(store, nil)

	result := e.Analyze(context.Background(), "fix it", &model.SessionContext{ProjectPath: "/home/dev/proj"})
	if result == nil {
		t.Fatal("Analyze must not fail on history errors")
	}
	if result.ComparisonWithHistory != nil {
		t.Error("No comparison should be offered when history is unreadable")
	}
	if result.HistoryRecommendations != nil {
		t.Error("No recommendations should be offered when history is unreadable")
	}
	_ = e.Close()
}

func TestAnalyze_PersistFailureDegrades(t *testing.T) {
	store := &memStore{appendErr: errors.New("disk full")}
	e := testEngine(store, nil)

	result := e.Analyze(context.Background(), "fix it", nil)
	if result == nil {
		t.Fatal("Analyze must not fail on persistence errors")
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, _ := store.ReadAll()
	if len(records) != 0 {
		t.Errorf("Expected no persisted records, got %d", len(records))
	}
}

func TestEvaluate_CachesByPromptText(t *testing.T) {
	oracle := &countingOracle{inner: rubric.NewScorer()}
	e := testEngine(nil, nil)
	e.oracle = oracle
	e.cache = cache.NewLayeredCache(time.Minute, t.TempDir(), time.Minute)
	e.cacheTTL = time.Minute

	first := e.evaluate("write a sorting function")
	second := e.evaluate("write a sorting function")
	if oracle.calls != 1 {
		t.Errorf("Expected one oracle call for a repeated prompt, got %d", oracle.calls)
	}
	if first.Overall != second.Overall || first.Grade != second.Grade {
		t.Errorf("Cached evaluation differs: %+v vs %+v", first, second)
	}

	e.evaluate("a different prompt")
	if oracle.calls != 2 {
		t.Errorf("Distinct prompts must not share cache entries, calls = %d", oracle.calls)
	}
}

func TestResolveAIVariant_NeedsSetupWithoutProvider(t *testing.T) {
	e := testEngine(nil, nil)
	if e.AIConfigured() {
		t.Error("No provider means not configured")
	}

	eval := e.oracle.Score("fix it")
	c := e.ResolveAIVariant(context.Background(), "fix it", eval, nil)
	if !c.NeedsSetup {
		t.Errorf("Expected needs-setup candidate, got %+v", c)
	}
}

func TestResolveAIVariantAsync_DeliversOneCandidate(t *testing.T) {
	e := testEngine(nil, &echoProvider{text: "better prompt with Output format: markdown."})

	eval := e.oracle.Score("fix it")
	ch := e.ResolveAIVariantAsync(context.Background(), "fix it", eval, nil)

	select {
	case c, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed without a candidate")
		}
		if c.Kind != model.VariantAI {
			t.Errorf("Expected an ai candidate, got %s", c.Kind)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for the AI candidate")
	}

	if _, ok := <-ch; ok {
		t.Error("Channel should deliver exactly one candidate then close")
	}
}
