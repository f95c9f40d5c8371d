package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/promptlens/promptlens/internal/model"
	"github.com/promptlens/promptlens/internal/variant"
)

// stubProvider lets tests script provider behavior per call.
type stubProvider struct {
	name     string
	generate func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return p.generate(ctx, req)
}

func (p *stubProvider) IsAvailable(ctx context.Context) bool { return true }

// stubOracle scores exact texts from a table and everything else at base.
type stubOracle struct {
	base   float64
	scores map[string]float64
}

func (o *stubOracle) Score(text string) model.GuidelineEvaluation {
	overall := o.base
	if s, ok := o.scores[text]; ok {
		overall = s
	}
	return model.GuidelineEvaluation{Overall: overall}
}

func weakOutputEval() model.GuidelineEvaluation {
	return model.GuidelineEvaluation{
		Scores: model.GoldenScoreVector{
			Goal:       0.8,
			Output:     0.3,
			Limits:     0.7,
			Data:       0.7,
			Evaluation: 0.7,
			Next:       0.7,
		},
		Overall: 0.55,
	}
}

func testConfig() Config {
	return Config{Timeout: 5, Styles: 1, RequestsPerSecond: 50}
}

func TestSelectBest_NoProviderNeedsSetup(t *testing.T) {
	s := NewSelector(nil, &stubOracle{}, variant.NewGenerator(), testConfig(), nil)

	if s.Configured() {
		t.Error("Expected Configured to be false without a provider")
	}

	c := s.SelectBest(context.Background(), "do the thing", weakOutputEval(), nil)
	if !c.NeedsSetup {
		t.Error("Expected NeedsSetup candidate")
	}
	if c.Rewritten != "" {
		t.Errorf("NeedsSetup candidate must carry no rewrite, got %q", c.Rewritten)
	}
	if c.AIGenerated {
		t.Error("NeedsSetup candidate must not claim AI generation")
	}
	if c.Kind != model.VariantAI {
		t.Errorf("Expected ai kind, got %s", c.Kind)
	}
	if c.KeyChanges == nil {
		t.Error("KeyChanges should be empty, not nil")
	}
}

func TestSelectBest_AcceptsRewriteBeatingBaseline(t *testing.T) {
	const aiText = "Rewrite the billing parser. Output format: JSON."
	provider := &stubProvider{
		name: "openai",
		generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
			return &GenerateResponse{Text: aiText}, nil
		},
	}
	oracle := &stubOracle{base: 0.5, scores: map[string]float64{aiText: 0.9}}
	s := NewSelector(provider, oracle, variant.NewGenerator(), testConfig(), nil)

	c := s.SelectBest(context.Background(), "fix the parser", weakOutputEval(), nil)
	if !c.AIGenerated {
		t.Fatalf("Expected AI candidate to win, got %+v", c)
	}
	if c.Rewritten != aiText {
		t.Errorf("Expected provider rewrite, got %q", c.Rewritten)
	}
	if c.Confidence != 0.9 {
		t.Errorf("Expected confidence from oracle score, got %f", c.Confidence)
	}
	if len(c.KeyChanges) != 1 || c.KeyChanges[0] != "output" {
		t.Errorf("Expected weak dimensions as key changes, got %v", c.KeyChanges)
	}
	if c.AIExplanation == "" {
		t.Error("Expected an explanation for the AI candidate")
	}
}

func TestSelectBest_TieGoesToAI(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
			return &GenerateResponse{Text: "tied rewrite"}, nil
		},
	}
	// Every text scores the same, so the AI candidate exactly ties the baseline.
	s := NewSelector(provider, &stubOracle{base: 0.5}, variant.NewGenerator(), testConfig(), nil)

	c := s.SelectBest(context.Background(), "fix the parser", weakOutputEval(), nil)
	if !c.AIGenerated {
		t.Error("Expected the AI candidate to win an exact tie")
	}
	if c.Rewritten != "tied rewrite" {
		t.Errorf("Expected the AI rewrite on a tie, got %q", c.Rewritten)
	}
}

func TestSelectBest_FallsBackWhenBelowBaseline(t *testing.T) {
	const aiText = "a worse rewrite"
	provider := &stubProvider{
		name: "openai",
		generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
			return &GenerateResponse{Text: aiText}, nil
		},
	}
	oracle := &stubOracle{base: 0.6, scores: map[string]float64{aiText: 0.2}}
	gen := variant.NewGenerator()
	s := NewSelector(provider, oracle, gen, testConfig(), nil)

	text := "fix the parser"
	eval := weakOutputEval()
	c := s.SelectBest(context.Background(), text, eval, nil)
	if c.AIGenerated {
		t.Fatal("Expected fallback, not an AI win")
	}

	baseline := gen.Generate(text, eval, nil)[1]
	if c.Rewritten != baseline.Rewritten {
		t.Errorf("Fallback must carry the balanced rewrite, got %q", c.Rewritten)
	}
	if c.Confidence != baseline.Confidence {
		t.Errorf("Fallback must carry the balanced confidence, got %f", c.Confidence)
	}
	if c.Kind != model.VariantAI {
		t.Errorf("Fallback still fills the ai slot, got %s", c.Kind)
	}
	if !strings.Contains(c.AIExplanation, "rule-based") {
		t.Errorf("Expected the explanation to say the fallback is rule based, got %q", c.AIExplanation)
	}
}

func TestSelectBest_ProviderErrorFallsBack(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
	gen := variant.NewGenerator()
	s := NewSelector(provider, &stubOracle{base: 0.5}, gen, testConfig(), nil)

	text := "fix the parser"
	eval := weakOutputEval()
	c := s.SelectBest(context.Background(), text, eval, nil)
	if c.AIGenerated {
		t.Fatal("Expected fallback on provider error")
	}
	if c.NeedsSetup {
		t.Error("Provider errors are not a setup problem")
	}
	if c.Rewritten != gen.Generate(text, eval, nil)[1].Rewritten {
		t.Errorf("Expected the balanced rewrite, got %q", c.Rewritten)
	}
}

func TestSelectBest_EmptyResponseFallsBack(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
			return &GenerateResponse{Text: "```\n```"}, nil
		},
	}
	s := NewSelector(provider, &stubOracle{base: 0.5}, variant.NewGenerator(), testConfig(), nil)

	c := s.SelectBest(context.Background(), "fix the parser", weakOutputEval(), nil)
	if c.AIGenerated {
		t.Error("A rewrite that sanitizes to empty must not be accepted")
	}
	if c.Rewritten == "" {
		t.Error("Fallback must still carry a rewrite")
	}
}

func TestSelectBest_TimeoutFallsBack(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	cfg := testConfig()
	cfg.Timeout = 1
	s := NewSelector(provider, &stubOracle{base: 0.5}, variant.NewGenerator(), cfg, nil)

	start := time.Now()
	c := s.SelectBest(context.Background(), "fix the parser", weakOutputEval(), nil)
	elapsed := time.Since(start)

	if c.AIGenerated {
		t.Error("Expected fallback when the provider exceeds the budget")
	}
	if c.Rewritten == "" {
		t.Error("Fallback must still carry a rewrite")
	}
	if elapsed > 3*time.Second {
		t.Errorf("Selection exceeded the timeout budget: %v", elapsed)
	}
}

func TestSelectBest_PicksHighestScoringStyle(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
			if strings.Contains(req.Prompt, "Restructure") {
				return &GenerateResponse{Text: "restructured rewrite"}, nil
			}
			return &GenerateResponse{Text: "polished rewrite"}, nil
		},
	}
	oracle := &stubOracle{base: 0.5, scores: map[string]float64{
		"polished rewrite":     0.7,
		"restructured rewrite": 0.85,
	}}
	cfg := testConfig()
	cfg.Styles = 2
	s := NewSelector(provider, oracle, variant.NewGenerator(), cfg, nil)

	c := s.SelectBest(context.Background(), "fix the parser", weakOutputEval(), nil)
	if !c.AIGenerated {
		t.Fatal("Expected an AI win")
	}
	if c.Rewritten != "restructured rewrite" {
		t.Errorf("Expected the higher-scoring style to win, got %q", c.Rewritten)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Empty provider should not error: %v", err)
	}
	if p != nil {
		t.Error("Empty provider should yield nil (needs-setup mode)")
	}

	if _, err := NewProvider(Config{Provider: "bard"}); err == nil {
		t.Error("Expected an error for an unknown provider")
	}

	p, err = NewProvider(Config{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("openai provider: %v", err)
	}
	if p == nil || p.Name() != "openai" {
		t.Errorf("Expected an openai provider, got %v", p)
	}
}

func TestSanitizeRewrite(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"```\nfenced\n```", "fenced"},
		{"```markdown\nfenced\n```", "fenced"},
		{"  padded  ", "padded"},
		{"```\n```", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeRewrite(tc.in); got != tc.want {
			t.Errorf("SanitizeRewrite(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
