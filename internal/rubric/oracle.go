// Package rubric scores prompt text against the six-dimension GOLDEN rubric.
package rubric

import "github.com/promptlens/promptlens/internal/model"

// Oracle turns prompt text into a GuidelineEvaluation. Implementations must
// be synchronous and must not fail for any input, including empty text
// (defined behavior: floor scores).
type Oracle interface {
	Score(text string) model.GuidelineEvaluation
}
