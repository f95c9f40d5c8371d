package rubric

import (
	"strings"
	"testing"

	"github.com/promptlens/promptlens/internal/model"
)

func TestScorer_EmptyText(t *testing.T) {
	scorer := NewScorer()

	eval := scorer.Score("")

	if eval.Overall != 0 {
		t.Errorf("Expected overall 0 for empty text, got %f", eval.Overall)
	}
	if eval.Grade != model.GradeF {
		t.Errorf("Expected grade F for empty text, got %s", eval.Grade)
	}
	for _, d := range model.Dimensions() {
		if eval.Scores.At(d) != 0 {
			t.Errorf("Expected %s score 0 for empty text, got %f", d, eval.Scores.At(d))
		}
	}
}

func TestScorer_StructuredPromptBeatsVaguePrompt(t *testing.T) {
	scorer := NewScorer()

	vague := scorer.Score("fix it")
	structured := scorer.Score(`Goal: implement retry logic for the HTTP fetcher in the sync package.
Output format: respond in markdown with a short plan followed by the code.
Constraints: do not change the public API, only use the standard library.
Context: based on the following project, a Go CLI that syncs datasets.
Success criteria: verify the existing tests still pass and retries cap at 3.
Next step: after responding, list any follow up refactors.`)

	if structured.Overall <= vague.Overall {
		t.Errorf("Expected structured prompt (%f) to outscore vague prompt (%f)",
			structured.Overall, vague.Overall)
	}
	if structured.Grade == model.GradeF {
		t.Errorf("Expected structured prompt to grade above F, got %s", structured.Grade)
	}
}

func TestScorer_ShortPromptAntiPattern(t *testing.T) {
	scorer := NewScorer()

	eval := scorer.Score("fix the bug")

	found := false
	for _, ap := range eval.AntiPatterns {
		if ap.Category == "too-short" {
			found = true
			if ap.Severity != model.SeverityHigh {
				t.Errorf("Expected too-short severity high, got %s", ap.Severity)
			}
		}
	}
	if !found {
		t.Error("Expected too-short anti-pattern for a 3-word prompt")
	}
}

func TestScorer_OverallMonotoneInSubScores(t *testing.T) {
	scorer := NewScorer()

	// B's text is A's text plus cues for every dimension, so every sub-score
	// of B must be >= A's, and therefore overall(B) >= overall(A).
	a := scorer.Score("write a parser for the log format used by the ingest service")
	b := scorer.Score(`Goal: write a parser for the log format used by the ingest service.
Output format: return a single Go file. Constraints: avoid external deps.
Context: given the sample logs below. Success criteria: test against samples.
Next step: then wire it into the pipeline.`)

	for _, d := range model.Dimensions() {
		if b.Scores.At(d) < a.Scores.At(d) {
			t.Fatalf("Dimension %s regressed: %f < %f", d, b.Scores.At(d), a.Scores.At(d))
		}
	}
	if b.Overall < a.Overall {
		t.Errorf("Overall not monotone: %f < %f", b.Overall, a.Overall)
	}
}

func TestScorer_Deterministic(t *testing.T) {
	scorer := NewScorer()
	text := "Goal: build a widget. Output format: JSON. Constraints: none special."

	first := scorer.Score(text)
	second := scorer.Score(text)

	if first.Overall != second.Overall {
		t.Errorf("Expected identical overall across calls, got %f and %f", first.Overall, second.Overall)
	}
	if len(first.AntiPatterns) != len(second.AntiPatterns) {
		t.Error("Expected identical anti-patterns across calls")
	}
}

func TestScorer_RecommendationsNameWeakDimensions(t *testing.T) {
	scorer := NewScorer()

	eval := scorer.Score("do the thing with the stuff somehow please and thanks a lot")

	if len(eval.Recommendations) == 0 {
		t.Fatal("Expected recommendations for a weak prompt")
	}
	for _, rec := range eval.Recommendations {
		if !strings.Contains(rec, "dimension") {
			t.Errorf("Recommendation does not name a dimension: %q", rec)
		}
	}
}
