package variant

import (
	"strings"
	"testing"

	"github.com/promptlens/promptlens/internal/model"
)

func evalWithScores(goal, output, limits, data, evaluation, next float64) model.GuidelineEvaluation {
	return model.GuidelineEvaluation{
		Scores: model.GoldenScoreVector{
			Goal:       goal,
			Output:     output,
			Limits:     limits,
			Data:       data,
			Evaluation: evaluation,
			Next:       next,
		},
	}
}

func TestGenerator_ReturnsThreeVariantsInOrder(t *testing.T) {
	g := NewGenerator()

	candidates := g.Generate("write a thing", evalWithScores(0.2, 0.3, 0.6, 0.6, 0.6, 0.6), nil)

	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(candidates))
	}
	expected := []model.VariantKind{model.VariantConservative, model.VariantBalanced, model.VariantComprehensive}
	for i, kind := range expected {
		if candidates[i].Kind != kind {
			t.Errorf("Position %d: expected %s, got %s", i, kind, candidates[i].Kind)
		}
		if candidates[i].AIGenerated {
			t.Errorf("Rule-based candidate %s marked AI-generated", kind)
		}
	}
}

func TestGenerator_ConservativeTouchesOnlyWeakestDimension(t *testing.T) {
	g := NewGenerator()

	// output is weakest (0.1), then goal (0.2).
	candidates := g.Generate("do something", evalWithScores(0.2, 0.1, 0.7, 0.7, 0.7, 0.7), nil)
	conservative := candidates[0]

	if len(conservative.KeyChanges) != 1 || conservative.KeyChanges[0] != "output" {
		t.Errorf("Expected key changes [output], got %v", conservative.KeyChanges)
	}
	if !strings.Contains(conservative.Rewritten, "do something") {
		t.Error("Conservative variant must preserve the original wording")
	}
	if !strings.Contains(conservative.Rewritten, "Output format:") {
		t.Error("Conservative variant must insert the output remediation clause")
	}
}

func TestGenerator_BalancedTouchesEveryWeakDimension(t *testing.T) {
	g := NewGenerator()

	candidates := g.Generate("do something", evalWithScores(0.2, 0.1, 0.7, 0.4, 0.7, 0.7), nil)
	balanced := candidates[1]

	if len(balanced.KeyChanges) != 3 {
		t.Fatalf("Expected 3 key changes, got %v", balanced.KeyChanges)
	}
	// Weakest first: output (0.1), goal (0.2), data (0.4).
	want := []string{"output", "goal", "data"}
	for i, name := range want {
		if balanced.KeyChanges[i] != name {
			t.Errorf("Key change %d: expected %s, got %s", i, name, balanced.KeyChanges[i])
		}
	}
	// confidence = 1 - 3/6
	if balanced.Confidence != 0.5 {
		t.Errorf("Expected balanced confidence 0.5, got %f", balanced.Confidence)
	}
}

func TestGenerator_ConfidenceOrdering(t *testing.T) {
	g := NewGenerator()

	cases := []model.GuidelineEvaluation{
		evalWithScores(0.1, 0.1, 0.1, 0.1, 0.1, 0.1),
		evalWithScores(0.2, 0.6, 0.6, 0.6, 0.6, 0.6),
		evalWithScores(0.45, 0.45, 0.6, 0.6, 0.6, 0.6),
		evalWithScores(0.9, 0.9, 0.9, 0.9, 0.9, 0.9),
	}

	for i, eval := range cases {
		candidates := g.Generate("some prompt text here", eval, nil)
		conservative, balanced, comprehensive := candidates[0], candidates[1], candidates[2]
		if comprehensive.Confidence < balanced.Confidence {
			t.Errorf("Case %d: comprehensive (%f) < balanced (%f)", i, comprehensive.Confidence, balanced.Confidence)
		}
		if balanced.Confidence < conservative.Confidence {
			t.Errorf("Case %d: balanced (%f) < conservative (%f)", i, balanced.Confidence, conservative.Confidence)
		}
	}
}

func TestGenerator_NoWeakDimensions(t *testing.T) {
	g := NewGenerator()

	candidates := g.Generate("already great prompt", evalWithScores(0.9, 0.9, 0.9, 0.9, 0.9, 0.9), nil)

	for _, c := range candidates[:2] {
		if c.Rewritten != "already great prompt" {
			t.Errorf("%s: expected original text unchanged, got %q", c.Kind, c.Rewritten)
		}
		if len(c.KeyChanges) != 0 {
			t.Errorf("%s: expected no key changes, got %v", c.Kind, c.KeyChanges)
		}
		if c.Confidence != 0 {
			t.Errorf("%s: expected confidence 0, got %f", c.Kind, c.Confidence)
		}
	}
	// Comprehensive still normalizes structure.
	if candidates[2].Confidence != comprehensiveConfidence {
		t.Errorf("Expected comprehensive confidence %f, got %f", comprehensiveConfidence, candidates[2].Confidence)
	}
}

func TestGenerator_ComprehensiveHasAllSixSections(t *testing.T) {
	g := NewGenerator()

	candidates := g.Generate("migrate the billing service to the new queue. keep the old API.",
		evalWithScores(0.3, 0.3, 0.3, 0.3, 0.3, 0.3), nil)
	comprehensive := candidates[2]

	for _, d := range model.Dimensions() {
		if !strings.Contains(comprehensive.Rewritten, d.Label()+":") {
			t.Errorf("Missing section %q in comprehensive rewrite", d.Label())
		}
	}
	if !strings.Contains(comprehensive.Rewritten, "migrate the billing service") {
		t.Error("Comprehensive goal section should carry the original first sentence")
	}
}

func TestGenerator_SessionContextFillsDataSection(t *testing.T) {
	g := NewGenerator()
	sctx := &model.SessionContext{
		ProjectPath: "/home/dev/billing",
		IDEName:     "GoLand",
		Source:      model.SourceActiveWindow,
		Confidence:  model.ContextHigh,
	}

	candidates := g.Generate("fix it", evalWithScores(0.2, 0.2, 0.2, 0.2, 0.2, 0.2), sctx)

	if !strings.Contains(candidates[1].Rewritten, "/home/dev/billing") {
		t.Error("Balanced variant should use the project path for the data clause")
	}
	if !strings.Contains(candidates[2].Rewritten, "/home/dev/billing") {
		t.Error("Comprehensive variant should fill the Data section from context")
	}
	if !strings.Contains(candidates[2].Rewritten, "GoLand") {
		t.Error("Comprehensive variant should mention the IDE")
	}
}

func TestGenerator_EmptyText(t *testing.T) {
	g := NewGenerator()

	candidates := g.Generate("", evalWithScores(0, 0, 0, 0, 0, 0), nil)

	for _, c := range candidates {
		if c.Rewritten == "" {
			t.Errorf("%s: expected a well-formed rewrite even for empty input", c.Kind)
		}
	}
}
