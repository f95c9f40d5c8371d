package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/promptlens/promptlens/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// scoreBar renders a 20-cell bar for a 0.0-1.0 sub-score.
func scoreBar(score float64) string {
	filled := int(score * 20)
	if filled > 20 {
		filled = 20
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
}

// renderResult prints the full analysis in the human-readable layout.
func renderResult(w io.Writer, result *model.AnalysisResult) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Prompt Score: %d/100 (%s)\n", result.Evaluation.OverallDisplay(), result.Evaluation.Grade)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	for _, d := range model.Dimensions() {
		score := result.Evaluation.Scores.At(d)
		fmt.Fprintf(w, "  %-12s %s %3d/100\n", d.Label(), scoreBar(score), int(score*100+0.5))
	}
	fmt.Fprintln(w)

	if c := result.Classification; c != nil && c.Category != "general" {
		fmt.Fprintf(w, "  Detected: %s / %s (confidence %.0f%%)\n\n", c.Intent, c.Category, c.Confidence*100)
	}

	if len(result.Issues) > 0 {
		fmt.Fprintln(w, "  Issues:")
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(string(issue.Severity)), issue.Message)
			if issue.Suggestion != "" {
				fmt.Fprintf(w, "         → %s\n", issue.Suggestion)
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.HistoryRecommendations) > 0 {
		fmt.Fprintln(w, "  From your history:")
		for _, rec := range result.HistoryRecommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
		fmt.Fprintln(w)
	}

	if cmp := result.ComparisonWithHistory; cmp != nil {
		direction := "above"
		delta := cmp.Delta
		if delta < 0 {
			direction = "below"
			delta = -delta
		}
		fmt.Fprintf(w, "  This prompt scores %.0f points %s your project average (%.0f/100, %d samples).\n\n",
			delta, direction, cmp.ProjectAverage, cmp.SampleCount)
	}

	for _, candidate := range result.Candidates {
		renderCandidate(w, candidate)
	}
}

// renderCandidate prints one rewrite variant.
func renderCandidate(w io.Writer, c model.RewriteCandidate) {
	fmt.Fprintf(w, "  ── %s", c.Label)
	switch {
	case c.Loading:
		fmt.Fprintf(w, " (resolving...)\n\n")
		return
	case c.NeedsSetup:
		fmt.Fprintf(w, "\n  Configure an LLM provider to enable AI rewrites:\n")
		fmt.Fprintf(w, "    promptlens config init\n")
		fmt.Fprintf(w, "    export OPENAI_API_KEY=sk-...\n\n")
		return
	case c.Confidence > 0:
		fmt.Fprintf(w, " (confidence %.0f%%)", c.Confidence*100)
	}
	fmt.Fprintln(w)

	if len(c.KeyChanges) > 0 {
		fmt.Fprintf(w, "  Changes: %s\n", strings.Join(c.KeyChanges, ", "))
	}
	if c.AIExplanation != "" {
		fmt.Fprintf(w, "  %s\n", c.AIExplanation)
	}
	fmt.Fprintln(w)
	for _, line := range strings.Split(c.Rewritten, "\n") {
		fmt.Fprintf(w, "  │ %s\n", line)
	}
	fmt.Fprintln(w)
}
