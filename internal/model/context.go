package model

// ContextSource says how the session context was detected.
type ContextSource string

const (
	SourceActiveWindow ContextSource = "active-window"
	SourceAppPath      ContextSource = "app-path"
)

// ContextConfidence grades how reliable the detected context is.
type ContextConfidence string

const (
	ContextHigh   ContextConfidence = "high"
	ContextMedium ContextConfidence = "medium"
	ContextLow    ContextConfidence = "low"
)

// SessionContext is the read-only per-request environment supplied by the
// OS-context collaborator. The engine never produces or mutates it.
type SessionContext struct {
	ProjectPath string            `json:"project_path"`
	IDEName     string            `json:"ide_name,omitempty"`
	Source      ContextSource     `json:"source"`
	Confidence  ContextConfidence `json:"confidence"`
}

// Classification is the optional intent/category verdict for a prompt.
type Classification struct {
	Intent     string  `json:"intent"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}
