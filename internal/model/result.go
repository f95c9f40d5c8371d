package model

// HistoryComparison relates the current score to the rolling average of
// earlier analyses for the same project.
type HistoryComparison struct {
	ProjectAverage float64 `json:"project_average"`
	Delta          float64 `json:"delta"` // current minus average
	SampleCount    int     `json:"sample_count"`
}

// AnalysisResult is the synchronous output of one analysis request.
//
// Candidates holds the three rule-based variants; when an AI provider is
// configured, a Loading placeholder occupies index 0 and callers splice the
// resolved AI candidate into that index.
type AnalysisResult struct {
	Prompt                 string              `json:"prompt"`
	Evaluation             GuidelineEvaluation `json:"evaluation"`
	Classification         *Classification     `json:"classification,omitempty"`
	Issues                 []Issue             `json:"issues"`
	Candidates             []RewriteCandidate  `json:"candidates"`
	HistoryRecommendations []string            `json:"history_recommendations,omitempty"`
	ComparisonWithHistory  *HistoryComparison  `json:"comparison_with_history,omitempty"`
}
