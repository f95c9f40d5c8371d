package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/model"
	"github.com/promptlens/promptlens/internal/rubric"
	"github.com/promptlens/promptlens/internal/variant"
	"github.com/promptlens/promptlens/internal/worker"
)

// Selector resolves the AI rewrite candidate. It fans requests out to the
// configured provider, scores every returned candidate through the oracle,
// and picks a winner against the rule-based balanced baseline.
//
// Every exit path returns a well-formed candidate: the only failure states a
// caller can observe are NeedsSetup and AIGenerated=false.
type Selector struct {
	provider  Provider // nil means no provider configured
	oracle    rubric.Oracle
	generator *variant.Generator
	limiter   *worker.Limiter
	timeout   time.Duration
	styles    int
	logger    *zap.Logger
}

// NewSelector creates a selector. provider may be nil (needs-setup mode).
func NewSelector(provider Provider, oracle rubric.Oracle, generator *variant.Generator, cfg Config, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	styles := cfg.Styles
	if styles <= 0 {
		styles = 1
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Selector{
		provider:  provider,
		oracle:    oracle,
		generator: generator,
		limiter:   worker.NewLimiter(rps, styles),
		timeout:   timeout,
		styles:    styles,
		logger:    logger,
	}
}

// Configured reports whether a provider is set up.
func (s *Selector) Configured() bool {
	return s.provider != nil
}

// scoredCandidate pairs a provider rewrite with its oracle verdict.
type scoredCandidate struct {
	text    string
	style   RewriteStyle
	overall float64
}

// SelectBest returns the single ai-variant candidate for the prompt, bounded
// by the selector's timeout budget. It never returns an error.
func (s *Selector) SelectBest(ctx context.Context, text string, eval model.GuidelineEvaluation, sctx *model.SessionContext) model.RewriteCandidate {
	if s.provider == nil {
		// No network call is made.
		return model.RewriteCandidate{
			Kind:       model.VariantAI,
			Label:      model.VariantAI.Label(),
			KeyChanges: []string{},
			NeedsSetup: true,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Rule-based balanced candidate is the baseline every AI rewrite must beat
	// or match, and the fallback for every failure path.
	baseline := s.generator.Generate(text, eval, sctx)[1]
	baselineOverall := s.oracle.Score(baseline.Rewritten).Overall

	candidates := s.collectCandidates(ctx, text, eval, sctx)

	best, ok := pickBest(candidates)
	if !ok {
		s.logger.Warn("ai variant unavailable, using rule-based fallback",
			zap.String("provider", s.provider.Name()))
		return s.fallback(baseline, "The AI provider did not return a usable rewrite; this is the rule-based balanced rewrite.")
	}

	// Never accept an AI candidate scoring strictly below the baseline; on an
	// exact tie the AI candidate wins.
	if best.overall < baselineOverall {
		return s.fallback(baseline, fmt.Sprintf(
			"The AI rewrite scored %d/100, below the rule-based rewrite at %d/100, so the rule-based version is shown.",
			int(best.overall*100), int(baselineOverall*100)))
	}

	changes := make([]string, 0, 6)
	for _, d := range eval.WeakDimensions(variant.WeakThreshold) {
		changes = append(changes, d.String())
	}

	return model.RewriteCandidate{
		Kind:        model.VariantAI,
		Label:       model.VariantAI.Label(),
		Rewritten:   best.text,
		KeyChanges:  changes,
		Confidence:  best.overall,
		AIGenerated: true,
		AIExplanation: fmt.Sprintf("Rewritten with the %s style; scores %d/100 against %d/100 for the best rule-based version.",
			best.style, int(best.overall*100), int(baselineOverall*100)),
	}
}

// collectCandidates issues one provider call per requested style and scores
// whatever comes back. Provider errors, timeouts, and malformed (empty)
// responses are logged and dropped, never propagated.
func (s *Selector) collectCandidates(ctx context.Context, text string, eval model.GuidelineEvaluation, sctx *model.SessionContext) []scoredCandidate {
	styles := rewriteStyles(s.styles)
	results := make([]scoredCandidate, len(styles))
	valid := make([]bool, len(styles))

	var wg sync.WaitGroup
	for i, style := range styles {
		wg.Add(1)
		go func(i int, style RewriteStyle) {
			defer wg.Done()

			if err := s.limiter.Wait(ctx, s.provider.Name()); err != nil {
				return
			}

			resp, err := s.provider.Generate(ctx, GenerateRequest{
				Prompt:      BuildRewritePrompt(text, eval, sctx, style),
				System:      rewriteSystem,
				Temperature: 0.3,
			})
			if err != nil {
				s.logger.Warn("provider call failed",
					zap.String("provider", s.provider.Name()),
					zap.String("style", string(style)),
					zap.Error(err))
				return
			}

			rewritten := SanitizeRewrite(resp.Text)
			if rewritten == "" {
				s.logger.Warn("provider returned malformed rewrite",
					zap.String("provider", s.provider.Name()),
					zap.String("style", string(style)))
				return
			}

			results[i] = scoredCandidate{
				text:    rewritten,
				style:   style,
				overall: s.oracle.Score(rewritten).Overall,
			}
			valid[i] = true
		}(i, style)
	}
	wg.Wait()

	var out []scoredCandidate
	for i := range results {
		if valid[i] {
			out = append(out, results[i])
		}
	}
	return out
}

// pickBest returns the highest-scoring candidate; earlier styles win ties.
func pickBest(candidates []scoredCandidate) (scoredCandidate, bool) {
	if len(candidates) == 0 {
		return scoredCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.overall > best.overall {
			best = c
		}
	}
	return best, true
}

// fallback relabels the balanced rule-based candidate for the ai slot.
func (s *Selector) fallback(baseline model.RewriteCandidate, note string) model.RewriteCandidate {
	return model.RewriteCandidate{
		Kind:          model.VariantAI,
		Label:         model.VariantAI.Label(),
		Rewritten:     baseline.Rewritten,
		KeyChanges:    baseline.KeyChanges,
		Confidence:    baseline.Confidence,
		AIGenerated:   false,
		AIExplanation: note,
	}
}
