package model

import (
	"fmt"
	"sort"
)

// IssueSeverity indicates how strongly an issue degrades prompt quality.
type IssueSeverity string

const (
	SeverityHigh   IssueSeverity = "high"
	SeverityMedium IssueSeverity = "medium"
	SeverityLow    IssueSeverity = "low"
)

// rank orders severities for presentation (high first).
func (s IssueSeverity) rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// Issue is a user-facing problem found in a prompt.
type Issue struct {
	Severity   IssueSeverity `json:"severity"`
	Category   string        `json:"category"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// MaxIssues caps how many issues are surfaced per analysis.
const MaxIssues = 5

// DeriveIssues builds the presentation issue list from an evaluation:
// every detected anti-pattern plus one issue per dimension scoring below 0.5
// (escalated to high severity below 0.3). The result is sorted high, medium,
// low and truncated to MaxIssues.
func DeriveIssues(eval GuidelineEvaluation) []Issue {
	var issues []Issue

	for _, ap := range eval.AntiPatterns {
		issues = append(issues, Issue{
			Severity:   ap.Severity,
			Category:   ap.Category,
			Message:    ap.Message,
			Suggestion: ap.Suggestion,
		})
	}

	for _, d := range Dimensions() {
		score := eval.Scores.At(d)
		if score >= 0.5 {
			continue
		}
		severity := SeverityMedium
		if score < 0.3 {
			severity = SeverityHigh
		}
		issues = append(issues, Issue{
			Severity:   severity,
			Category:   "low-" + d.String(),
			Message:    fmt.Sprintf("The %s dimension scores %d/100", d.String(), int(score*100)),
			Suggestion: fmt.Sprintf("Add an explicit %s section to the prompt", d.Label()),
		})
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.rank() < issues[j].Severity.rank()
	})

	if len(issues) > MaxIssues {
		issues = issues[:MaxIssues]
	}
	return issues
}
