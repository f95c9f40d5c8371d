package model

import "math"

// GoldenDimension identifies one of the six GOLDEN scoring axes.
type GoldenDimension int

const (
	DimGoal GoldenDimension = iota
	DimOutput
	DimLimits
	DimData
	DimEvaluation
	DimNext
)

// Dimensions returns all six axes in canonical order.
func Dimensions() []GoldenDimension {
	return []GoldenDimension{DimGoal, DimOutput, DimLimits, DimData, DimEvaluation, DimNext}
}

func (d GoldenDimension) String() string {
	switch d {
	case DimGoal:
		return "goal"
	case DimOutput:
		return "output"
	case DimLimits:
		return "limits"
	case DimData:
		return "data"
	case DimEvaluation:
		return "evaluation"
	case DimNext:
		return "next"
	default:
		return "unknown"
	}
}

// Label returns the human-readable section heading for a dimension.
func (d GoldenDimension) Label() string {
	switch d {
	case DimGoal:
		return "Goal"
	case DimOutput:
		return "Output"
	case DimLimits:
		return "Limits"
	case DimData:
		return "Data"
	case DimEvaluation:
		return "Evaluation"
	case DimNext:
		return "Next"
	default:
		return "Unknown"
	}
}

// GoldenScoreVector holds the six sub-scores. Values are 0.0-1.0 internally;
// use Display for the 0-100 presentation form.
type GoldenScoreVector struct {
	Goal       float64 `json:"goal"`
	Output     float64 `json:"output"`
	Limits     float64 `json:"limits"`
	Data       float64 `json:"data"`
	Evaluation float64 `json:"evaluation"`
	Next       float64 `json:"next"`
}

// At returns the sub-score for the given dimension.
func (v GoldenScoreVector) At(d GoldenDimension) float64 {
	switch d {
	case DimGoal:
		return v.Goal
	case DimOutput:
		return v.Output
	case DimLimits:
		return v.Limits
	case DimData:
		return v.Data
	case DimEvaluation:
		return v.Evaluation
	case DimNext:
		return v.Next
	default:
		return 0
	}
}

// Set assigns the sub-score for the given dimension.
func (v *GoldenScoreVector) Set(d GoldenDimension, score float64) {
	switch d {
	case DimGoal:
		v.Goal = score
	case DimOutput:
		v.Output = score
	case DimLimits:
		v.Limits = score
	case DimData:
		v.Data = score
	case DimEvaluation:
		v.Evaluation = score
	case DimNext:
		v.Next = score
	}
}

// Display converts a sub-score vector to 0-100 integers for presentation.
func (v GoldenScoreVector) Display() map[string]int {
	out := make(map[string]int, 6)
	for _, d := range Dimensions() {
		out[d.String()] = int(math.Round(v.At(d) * 100))
	}
	return out
}

// Grade is the letter-grade verdict for a prompt.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeForScore maps an overall 0-100 score to a letter grade.
func GradeForScore(score int) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 75:
		return GradeB
	case score >= 60:
		return GradeC
	case score >= 40:
		return GradeD
	default:
		return GradeF
	}
}

// AntiPattern is a named structural weakness detected by the rubric scorer.
type AntiPattern struct {
	Category   string        `json:"category"`
	Severity   IssueSeverity `json:"severity"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// GuidelineEvaluation is the oracle's verdict for one prompt text.
type GuidelineEvaluation struct {
	Scores          GoldenScoreVector `json:"scores"`
	Overall         float64           `json:"overall"` // 0.0-1.0, weighted aggregate
	Grade           Grade             `json:"grade"`
	AntiPatterns    []AntiPattern     `json:"anti_patterns,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
}

// OverallDisplay returns the overall score on the 0-100 presentation scale.
func (e GuidelineEvaluation) OverallDisplay() int {
	return int(math.Round(e.Overall * 100))
}

// WeakDimensions returns the dimensions scoring below the threshold,
// ordered weakest first.
func (e GuidelineEvaluation) WeakDimensions(threshold float64) []GoldenDimension {
	var weak []GoldenDimension
	for _, d := range Dimensions() {
		if e.Scores.At(d) < threshold {
			weak = append(weak, d)
		}
	}
	// Insertion sort by ascending score; six elements at most.
	for i := 1; i < len(weak); i++ {
		for j := i; j > 0 && e.Scores.At(weak[j]) < e.Scores.At(weak[j-1]); j-- {
			weak[j], weak[j-1] = weak[j-1], weak[j]
		}
	}
	return weak
}
