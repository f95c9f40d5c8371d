package model

import "time"

// AnalysisRecord is the append-only log entry written after each analysis.
// Once written it is never mutated or deleted; the ordered sequence of
// records is the sole input to history analytics.
type AnalysisRecord struct {
	ID             int64             `json:"id"`
	PromptText     string            `json:"prompt_text"`
	Timestamp      time.Time         `json:"timestamp"`
	OverallScore   int               `json:"overall_score"` // 0-100
	Grade          Grade             `json:"grade"`
	Golden         GoldenScoreVector `json:"golden_scores"`
	Issues         []Issue           `json:"issues,omitempty"`
	ImprovedPrompt string            `json:"improved_prompt,omitempty"`
	ProjectPath    string            `json:"project_path,omitempty"`
	Intent         string            `json:"intent,omitempty"`
	Category       string            `json:"category,omitempty"`
}
