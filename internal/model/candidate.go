package model

// VariantKind is the closed set of rewrite generation strategies.
type VariantKind string

const (
	VariantConservative  VariantKind = "conservative"
	VariantBalanced      VariantKind = "balanced"
	VariantComprehensive VariantKind = "comprehensive"
	VariantAI            VariantKind = "ai"
)

// Label returns the UI label for a variant kind.
func (k VariantKind) Label() string {
	switch k {
	case VariantConservative:
		return "Light touch"
	case VariantBalanced:
		return "Balanced"
	case VariantComprehensive:
		return "Full restructure"
	case VariantAI:
		return "AI-enhanced"
	default:
		return string(k)
	}
}

// RewriteCandidate is one rewritten version of a prompt.
//
// Loading marks a transient placeholder while the AI variant resolves; it is
// never persisted. NeedsSetup marks the no-provider-configured state.
type RewriteCandidate struct {
	Rewritten     string      `json:"rewritten_prompt"`
	KeyChanges    []string    `json:"key_changes"`
	Confidence    float64     `json:"confidence"` // 0.0-1.0
	Kind          VariantKind `json:"variant"`
	Label         string      `json:"variant_label"`
	AIGenerated   bool        `json:"is_ai_generated"`
	AIExplanation string      `json:"ai_explanation,omitempty"`
	NeedsSetup    bool        `json:"needs_setup,omitempty"`
	Loading       bool        `json:"is_loading,omitempty"`
}
