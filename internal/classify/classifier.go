// Package classify assigns an intent and category to prompt text using
// keyword heuristics. Classification is optional everywhere it is consumed;
// a nil Classifier is a valid configuration.
package classify

import (
	"strings"

	"github.com/promptlens/promptlens/internal/model"
)

// Classifier maps prompt text to an intent/category verdict. Implementations
// are synchronous and must not fail.
type Classifier interface {
	Classify(text string) model.Classification
}

// Intent values.
const (
	IntentCreate    = "create"
	IntentDebug     = "debug"
	IntentExplain   = "explain"
	IntentTransform = "transform"
	IntentPlan      = "plan"
	IntentOther     = "other"
)

// Category values.
const (
	CategoryCoding   = "coding"
	CategoryWriting  = "writing"
	CategoryAnalysis = "analysis"
	CategoryResearch = "research"
	CategoryPlanning = "planning"
	CategoryGeneral  = "general"
)

var intentCues = map[string][]string{
	IntentCreate:    {"create", "build", "implement", "write", "add", "generate", "make"},
	IntentDebug:     {"fix", "debug", "error", "bug", "broken", "fails", "crash", "not working"},
	IntentExplain:   {"explain", "what is", "what does", "how does", "why", "describe", "walk me through"},
	IntentTransform: {"refactor", "rewrite", "convert", "translate", "migrate", "rename", "simplify"},
	IntentPlan:      {"plan", "design", "outline", "roadmap", "strategy", "architecture", "steps to"},
}

var categoryCues = map[string][]string{
	CategoryCoding:   {"code", "function", "class", "bug", "api", "test", "compile", "refactor", "golang", "python", "javascript", "sql"},
	CategoryWriting:  {"essay", "article", "blog", "email", "draft", "copy", "headline", "rewrite this paragraph"},
	CategoryAnalysis: {"analyze", "analyse", "compare", "evaluate", "assess", "metrics", "data set", "dataset"},
	CategoryResearch: {"research", "find sources", "literature", "survey", "investigate", "summarize papers"},
	CategoryPlanning: {"plan", "schedule", "milestones", "roadmap", "sprint", "backlog"},
}

// KeywordClassifier is the default rule-based classifier.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the default classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var _ Classifier = (*KeywordClassifier)(nil)

// Classify scores each intent and category by cue hits and returns the best
// of each. Confidence reflects the winning margin; no hits at all yields
// "other"/"general" with low confidence.
func (c *KeywordClassifier) Classify(text string) model.Classification {
	lower := strings.ToLower(text)

	intent, intentHits := bestMatch(lower, intentCues, IntentOther)
	category, categoryHits := bestMatch(lower, categoryCues, CategoryGeneral)

	confidence := 0.2
	if intentHits > 0 {
		confidence += 0.3
	}
	if categoryHits > 0 {
		confidence += 0.3
	}
	if intentHits > 1 && categoryHits > 1 {
		confidence += 0.2
	}

	return model.Classification{
		Intent:     intent,
		Category:   category,
		Confidence: confidence,
	}
}

func bestMatch(lower string, table map[string][]string, fallback string) (string, int) {
	best := fallback
	bestHits := 0
	// Deterministic order: iterate a fixed key list, not the map.
	for _, key := range orderedKeys(table) {
		hits := 0
		for _, cue := range table[key] {
			if strings.Contains(lower, cue) {
				hits++
			}
		}
		if hits > bestHits {
			best = key
			bestHits = hits
		}
	}
	return best, bestHits
}

func orderedKeys(table map[string][]string) []string {
	if _, ok := table[IntentCreate]; ok {
		return []string{IntentDebug, IntentTransform, IntentPlan, IntentExplain, IntentCreate}
	}
	return []string{CategoryCoding, CategoryWriting, CategoryAnalysis, CategoryResearch, CategoryPlanning}
}
