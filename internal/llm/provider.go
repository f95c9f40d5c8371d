// Package llm talks to generative providers and selects the best AI rewrite
// candidate. The provider transport is the only network boundary in the
// repository; every failure on it degrades to a rule-based fallback.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptlens/promptlens/internal/model"
)

// Provider defines the interface for generative providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces one rewrite candidate string for the request
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one provider call.
type GenerateRequest struct {
	// Prompt is the full instruction sent to the model
	Prompt string

	// System is the system instruction
	System string

	// Model overrides the configured model for this call
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; rewrites use a low value
	Temperature float32
}

// GenerateResponse contains the provider's output.
type GenerateResponse struct {
	// Text is the raw model output
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds generative provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for the whole selection, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Styles is how many candidate rewrites to request
	Styles int

	// RequestsPerSecond throttles calls to the provider
	RequestsPerSecond float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:          "", // Disabled by default
		Timeout:           15,
		MaxTokens:         1200,
		Styles:            2,
		RequestsPerSecond: 1,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:          mc.Provider,
		Model:             mc.Model,
		APIKey:            mc.APIKey,
		BaseURL:           mc.BaseURL,
		Timeout:           mc.Timeout,
		MaxTokens:         mc.MaxTokens,
		Styles:            mc.Styles,
		RequestsPerSecond: mc.RequestsPerSecond,
	}
}

// rewriteSystem is the system instruction for every rewrite request.
const rewriteSystem = "You are a prompt engineer. You rewrite prompts to be clearer and more complete " +
	"without changing what the author is asking for. Respond with the rewritten prompt only, " +
	"no preamble and no commentary."

// RewriteStyle names a requested level of rewrite aggressiveness.
type RewriteStyle string

const (
	StylePolish      RewriteStyle = "polish"      // minimal edits, keep the author's voice
	StyleRestructure RewriteStyle = "restructure" // full reorganization into labeled sections
)

// rewriteStyles returns the first n styles, cycling if a caller asks for more
// than are defined.
func rewriteStyles(n int) []RewriteStyle {
	all := []RewriteStyle{StylePolish, StyleRestructure}
	if n <= 0 {
		n = 1
	}
	styles := make([]RewriteStyle, 0, n)
	for i := 0; i < n; i++ {
		styles = append(styles, all[i%len(all)])
	}
	return styles
}

// BuildRewritePrompt constructs the instruction for one rewrite request,
// telling the model which GOLDEN dimensions are weak.
func BuildRewritePrompt(text string, eval model.GuidelineEvaluation, sctx *model.SessionContext, style RewriteStyle) string {
	var b strings.Builder

	b.WriteString("Rewrite the prompt below. The prompt is scored on six dimensions ")
	b.WriteString("(Goal, Output, Limits, Data, Evaluation, Next).\n\n")

	weak := eval.WeakDimensions(0.5)
	if len(weak) > 0 {
		b.WriteString("Weak dimensions to fix, weakest first:\n")
		for _, d := range weak {
			fmt.Fprintf(&b, "- %s (%d/100)\n", d.Label(), int(eval.Scores.At(d)*100))
		}
		b.WriteString("\n")
	}

	switch style {
	case StyleRestructure:
		b.WriteString("Restructure the prompt into labeled Goal/Output/Limits/Data/Evaluation/Next sections.\n")
	default:
		b.WriteString("Make the smallest edits that fix the weak dimensions; keep the author's wording.\n")
	}

	if sctx != nil && sctx.ProjectPath != "" {
		fmt.Fprintf(&b, "The author is working in the project %s", sctx.ProjectPath)
		if sctx.IDEName != "" {
			fmt.Fprintf(&b, " (using %s)", sctx.IDEName)
		}
		b.WriteString("; use that context where it helps.\n")
	}

	b.WriteString("\nPrompt:\n")
	b.WriteString(text)

	return b.String()
}

// SanitizeRewrite strips markdown code fences and surrounding whitespace from
// a model response. An empty result means the response was malformed.
func SanitizeRewrite(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop an optional language tag on the fence line.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
