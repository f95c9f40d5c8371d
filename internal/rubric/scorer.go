package rubric

import (
	"math"
	"strings"

	"github.com/promptlens/promptlens/internal/model"
)

// Dimension weights for the overall aggregate. All positive, so the overall
// score is monotone in every sub-score.
var weights = map[model.GoldenDimension]float64{
	model.DimGoal:       0.25,
	model.DimOutput:     0.20,
	model.DimLimits:     0.15,
	model.DimData:       0.15,
	model.DimEvaluation: 0.15,
	model.DimNext:       0.10,
}

// keyword cue tables per dimension. Matching is case-insensitive substring.
var cues = map[model.GoldenDimension][]string{
	model.DimGoal: {
		"goal:", "objective", "i want", "i need", "build", "create", "fix",
		"implement", "write", "explain", "summarize", "the task is",
	},
	model.DimOutput: {
		"output format", "format:", "output:", "respond in", "respond with",
		"return a", "as json", "as markdown", "as a list", "as a table",
		"bullet points", "structure the",
	},
	model.DimLimits: {
		"constraint", "do not", "don't", "avoid", "must not", "only use",
		"no more than", "within", "without", "limit", "keep it", "scope",
	},
	model.DimData: {
		"context:", "given", "based on", "using the", "the following",
		"attached", "below", "codebase", "project", "repository", "stack",
	},
	model.DimEvaluation: {
		"success criteria", "acceptance", "correct if", "verify", "test",
		"check that", "should pass", "criteria:", "evaluate", "valid when",
	},
	model.DimNext: {
		"next step", "then ", "after that", "follow up", "afterwards",
		"finally", "once done", "next:",
	},
}

// section headings that indicate an explicitly structured prompt.
var headings = map[model.GoldenDimension][]string{
	model.DimGoal:       {"goal:"},
	model.DimOutput:     {"output:", "output format:"},
	model.DimLimits:     {"limits:", "constraints:"},
	model.DimData:       {"data:", "context:"},
	model.DimEvaluation: {"evaluation:", "success criteria:"},
	model.DimNext:       {"next:", "next step:", "next steps:"},
}

// Scorer is the default deterministic rubric oracle. Every sub-score is
// derived from transparent keyword and structure signals; there is no model
// call and no randomness.
type Scorer struct{}

// NewScorer creates the default rule-based oracle.
func NewScorer() *Scorer {
	return &Scorer{}
}

var _ Oracle = (*Scorer)(nil)

// Score evaluates prompt text. It never fails; empty text yields floor scores.
func (s *Scorer) Score(text string) model.GuidelineEvaluation {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)

	var scores model.GoldenScoreVector
	for _, d := range model.Dimensions() {
		scores.Set(d, s.scoreDimension(d, lower, len(words)))
	}

	overall := 0.0
	for _, d := range model.Dimensions() {
		overall += weights[d] * scores.At(d)
	}

	eval := model.GuidelineEvaluation{
		Scores:  scores,
		Overall: clamp01(overall),
	}
	eval.Grade = model.GradeForScore(eval.OverallDisplay())
	eval.AntiPatterns = detectAntiPatterns(text, words, scores)
	eval.Recommendations = recommendations(scores)
	return eval
}

// scoreDimension combines a length-based base signal with keyword cues and an
// explicit-heading bonus, clamped to [0,1].
func (s *Scorer) scoreDimension(d model.GoldenDimension, lower string, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}

	score := baseSignal(d, wordCount)

	hits := 0
	for _, cue := range cues[d] {
		if strings.Contains(lower, cue) {
			hits++
		}
	}
	score += math.Min(float64(hits)*0.15, 0.45)

	for _, h := range headings[d] {
		if strings.Contains(lower, h) {
			score += 0.35
			break
		}
	}

	return clamp01(score)
}

// baseSignal rewards prompt length up to a point. The goal dimension gets a
// higher floor since nearly every prompt states some intent; evaluation and
// next get lower floors since they are almost never implicit.
func baseSignal(d model.GoldenDimension, wordCount int) float64 {
	length := math.Min(float64(wordCount)/60.0, 1.0)
	switch d {
	case model.DimGoal:
		return 0.25 + 0.15*length
	case model.DimOutput, model.DimLimits, model.DimData:
		return 0.10 + 0.15*length
	default:
		return 0.05 + 0.10*length
	}
}

func detectAntiPatterns(text string, words []string, scores model.GoldenScoreVector) []model.AntiPattern {
	var patterns []model.AntiPattern

	if len(words) < 8 {
		patterns = append(patterns, model.AntiPattern{
			Category:   "too-short",
			Severity:   model.SeverityHigh,
			Message:    "The prompt is too short to carry enough intent",
			Suggestion: "Describe the outcome, the context, and the expected output",
		})
	}
	if len(words) > 300 && !strings.Contains(text, "\n") {
		patterns = append(patterns, model.AntiPattern{
			Category:   "wall-of-text",
			Severity:   model.SeverityMedium,
			Message:    "The prompt is one unstructured block of text",
			Suggestion: "Break it into labeled sections",
		})
	}
	if scores.Goal < 0.35 {
		patterns = append(patterns, model.AntiPattern{
			Category:   "vague-goal",
			Severity:   model.SeverityHigh,
			Message:    "No concrete outcome is stated",
			Suggestion: "Open with a single sentence naming what must be produced",
		})
	}
	if scores.Output < 0.3 {
		patterns = append(patterns, model.AntiPattern{
			Category:   "no-output-format",
			Severity:   model.SeverityMedium,
			Message:    "The expected response format is unspecified",
			Suggestion: "Say how the answer should be shaped (list, JSON, prose)",
		})
	}
	if scores.Limits < 0.3 {
		patterns = append(patterns, model.AntiPattern{
			Category:   "no-constraints",
			Severity:   model.SeverityMedium,
			Message:    "No boundaries or exclusions are given",
			Suggestion: "State what is out of scope or must be avoided",
		})
	}
	if scores.Data < 0.3 {
		patterns = append(patterns, model.AntiPattern{
			Category:   "no-data-context",
			Severity:   model.SeverityLow,
			Message:    "No supporting context or data is referenced",
			Suggestion: "Mention the project, inputs, or materials to work from",
		})
	}
	if scores.Evaluation < 0.25 {
		patterns = append(patterns, model.AntiPattern{
			Category:   "no-evaluation",
			Severity:   model.SeverityLow,
			Message:    "There is no way to tell a good answer from a bad one",
			Suggestion: "Add success criteria",
		})
	}

	return patterns
}

func recommendations(scores model.GoldenScoreVector) []string {
	var recs []string
	for _, d := range model.Dimensions() {
		if scores.At(d) < 0.5 {
			recs = append(recs, "Strengthen the "+d.Label()+" dimension: add an explicit "+strings.ToLower(d.Label())+" statement")
		}
	}
	return recs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
