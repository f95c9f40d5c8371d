package variant

import (
	"strings"

	"github.com/promptlens/promptlens/internal/model"
)

// insertions holds the remediation clause appended for one weak dimension,
// keyed by the closed GoldenDimension enum. All six dimensions are defined
// here; keep the table in sync with model.Dimensions.
var insertions = map[model.GoldenDimension]string{
	model.DimGoal:       "Goal: state the single concrete outcome this prompt must achieve.",
	model.DimOutput:     "Output format: respond in markdown with clearly labeled sections.",
	model.DimLimits:     "Constraints: stay within the stated scope and do not invent requirements.",
	model.DimData:       "Context: work only from the details given in this prompt.",
	model.DimEvaluation: "Success criteria: the result is correct if it satisfies every requirement above.",
	model.DimNext:       "Next step: after responding, list any follow-up actions.",
}

// sectionDefault fills a comprehensive-template section when the original
// prompt and the session context offer nothing for it.
var sectionDefaults = map[model.GoldenDimension]string{
	model.DimGoal:       "State the concrete outcome you want.",
	model.DimOutput:     "Respond in markdown with clearly labeled sections.",
	model.DimLimits:     "Stay within the stated scope; note anything that must be avoided.",
	model.DimData:       "No additional context provided.",
	model.DimEvaluation: "The result is correct if it satisfies every requirement above.",
	model.DimNext:       "List any follow-up actions after responding.",
}

// insertionFor returns the remediation clause for a dimension, specialized
// with session context where the context can make it concrete.
func insertionFor(d model.GoldenDimension, sctx *model.SessionContext) string {
	if d == model.DimData && sctx != nil && sctx.ProjectPath != "" {
		return "Context: based on the project at " + sctx.ProjectPath + contextIDESuffix(sctx) + "."
	}
	return insertions[d]
}

// sectionFor fills one section of the comprehensive template.
func sectionFor(d model.GoldenDimension, text string, sctx *model.SessionContext) string {
	switch d {
	case model.DimGoal:
		if first := firstSentence(text); first != "" {
			return first
		}
	case model.DimData:
		if sctx != nil && sctx.ProjectPath != "" {
			return "Project: " + sctx.ProjectPath + contextIDESuffix(sctx) + "."
		}
	}
	return sectionDefaults[d]
}

func contextIDESuffix(sctx *model.SessionContext) string {
	if sctx.IDEName == "" {
		return ""
	}
	return " (opened in " + sctx.IDEName + ")"
}

// firstSentence returns the first sentence of the text, or the whole text if
// it is short and unpunctuated.
func firstSentence(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	for _, stop := range []string{". ", "! ", "? ", "\n"} {
		if idx := strings.Index(trimmed, stop); idx > 0 {
			return strings.TrimSpace(trimmed[:idx+1])
		}
	}
	if len(trimmed) > 200 {
		return strings.TrimSpace(trimmed[:200])
	}
	return trimmed
}
