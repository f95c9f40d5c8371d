// Package variant produces rule-based rewrite candidates for a prompt.
package variant

import (
	"math"
	"strings"

	"github.com/promptlens/promptlens/internal/model"
)

// WeakThreshold is the sub-score below which a dimension needs remediation.
const WeakThreshold = 0.5

// comprehensiveConfidence is fixed at the highest tier: the comprehensive
// variant always fully normalizes the prompt's structure.
const comprehensiveConfidence = 0.95

// Generator builds the three rule-based rewrite candidates. It is
// deterministic, synchronous, and never fails: the worst case is the original
// text unchanged with no key changes and confidence 0.
type Generator struct{}

// NewGenerator creates a rule-based variant generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns exactly three candidates: conservative, balanced,
// comprehensive, in that order. None are AI-generated.
func (g *Generator) Generate(text string, eval model.GuidelineEvaluation, sctx *model.SessionContext) []model.RewriteCandidate {
	weak := eval.WeakDimensions(WeakThreshold)

	return []model.RewriteCandidate{
		g.conservative(text, eval, weak, sctx),
		g.balanced(text, weak, sctx),
		g.comprehensive(text, sctx),
	}
}

// conservative inserts one clause for the single weakest dimension,
// preserving the original wording. Confidence scales with how much that
// dimension stands to improve in isolation, and never exceeds balanced's.
func (g *Generator) conservative(text string, eval model.GuidelineEvaluation, weak []model.GoldenDimension, sctx *model.SessionContext) model.RewriteCandidate {
	candidate := model.RewriteCandidate{
		Kind:       model.VariantConservative,
		Label:      model.VariantConservative.Label(),
		Rewritten:  text,
		KeyChanges: []string{},
	}
	if len(weak) == 0 {
		return candidate
	}

	weakest := weak[0]
	candidate.Rewritten = appendClause(text, insertionFor(weakest, sctx))
	candidate.KeyChanges = []string{weakest.String()}

	improvement := 0.8 - eval.Scores.At(weakest)
	candidate.Confidence = round2(math.Min(improvement, balancedConfidence(weak)))
	return candidate
}

// balanced inserts a clause for every weak dimension.
// Confidence = 1 - weakCount/6.
func (g *Generator) balanced(text string, weak []model.GoldenDimension, sctx *model.SessionContext) model.RewriteCandidate {
	candidate := model.RewriteCandidate{
		Kind:       model.VariantBalanced,
		Label:      model.VariantBalanced.Label(),
		Rewritten:  text,
		KeyChanges: []string{},
	}
	if len(weak) == 0 {
		return candidate
	}

	rewritten := text
	changes := make([]string, 0, len(weak))
	for _, d := range weak {
		rewritten = appendClause(rewritten, insertionFor(d, sctx))
		changes = append(changes, d.String())
	}
	candidate.Rewritten = rewritten
	candidate.KeyChanges = changes
	candidate.Confidence = round2(balancedConfidence(weak))
	return candidate
}

// comprehensive restructures the prompt into the explicit six-section GOLDEN
// template, carrying the original text as the goal and filling the data
// section from session context where available.
func (g *Generator) comprehensive(text string, sctx *model.SessionContext) model.RewriteCandidate {
	var b strings.Builder
	changes := make([]string, 0, 6)
	for i, d := range model.Dimensions() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(d.Label())
		b.WriteString(": ")
		b.WriteString(sectionFor(d, text, sctx))
		changes = append(changes, d.String())
	}

	return model.RewriteCandidate{
		Kind:       model.VariantComprehensive,
		Label:      model.VariantComprehensive.Label(),
		Rewritten:  b.String(),
		KeyChanges: changes,
		Confidence: comprehensiveConfidence,
	}
}

func balancedConfidence(weak []model.GoldenDimension) float64 {
	return 1.0 - float64(len(weak))/6.0
}

func appendClause(text, clause string) string {
	trimmed := strings.TrimRight(text, " \n\t")
	if trimmed == "" {
		return clause
	}
	return trimmed + "\n\n" + clause
}

func round2(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Round(v*100) / 100
}
