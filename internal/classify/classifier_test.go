package classify

import "testing"

func TestKeywordClassifier_CodingDebug(t *testing.T) {
	c := NewKeywordClassifier()

	result := c.Classify("fix the bug in the api function, the test fails with a nil pointer error")

	if result.Intent != IntentDebug {
		t.Errorf("Expected intent debug, got %s", result.Intent)
	}
	if result.Category != CategoryCoding {
		t.Errorf("Expected category coding, got %s", result.Category)
	}
	if result.Confidence < 0.5 {
		t.Errorf("Expected confidence >= 0.5 with strong cues, got %f", result.Confidence)
	}
}

func TestKeywordClassifier_NoCues(t *testing.T) {
	c := NewKeywordClassifier()

	result := c.Classify("hello there")

	if result.Intent != IntentOther {
		t.Errorf("Expected intent other, got %s", result.Intent)
	}
	if result.Category != CategoryGeneral {
		t.Errorf("Expected category general, got %s", result.Category)
	}
	if result.Confidence > 0.3 {
		t.Errorf("Expected low confidence without cues, got %f", result.Confidence)
	}
}

func TestKeywordClassifier_PlanningPrompt(t *testing.T) {
	c := NewKeywordClassifier()

	result := c.Classify("outline a roadmap with milestones for the next sprint")

	if result.Intent != IntentPlan {
		t.Errorf("Expected intent plan, got %s", result.Intent)
	}
	if result.Category != CategoryPlanning {
		t.Errorf("Expected category planning, got %s", result.Category)
	}
}

func TestKeywordClassifier_Deterministic(t *testing.T) {
	c := NewKeywordClassifier()
	text := "refactor this code and convert the class to a function"

	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		if got := c.Classify(text); got != first {
			t.Fatalf("Classification changed across calls: %+v vs %+v", first, got)
		}
	}
}
