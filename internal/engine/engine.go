// Package engine orchestrates a full prompt analysis: rubric scoring,
// classification, issue derivation, rewrite variants, history enrichment,
// and persistence to the analysis log.
package engine

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/cache"
	"github.com/promptlens/promptlens/internal/classify"
	"github.com/promptlens/promptlens/internal/history"
	"github.com/promptlens/promptlens/internal/llm"
	"github.com/promptlens/promptlens/internal/model"
	"github.com/promptlens/promptlens/internal/rubric"
	"github.com/promptlens/promptlens/internal/variant"
)

// Engine runs the analysis pipeline. Analyze never returns an error: scoring
// and variant generation are pure, and every optional stage (cache, history,
// AI provider) degrades to a result without it.
type Engine struct {
	oracle     rubric.Oracle
	classifier classify.Classifier
	generator  *variant.Generator
	selector   *llm.Selector
	cache      cache.Cache // nil when disabled
	cacheTTL   time.Duration
	store      history.Store // nil when disabled
	config     *model.Config
	logger     *zap.Logger

	persist sync.WaitGroup
}

// New creates an engine from configuration. A broken provider or history
// store is logged and disabled rather than failing construction.
func New(cfg *model.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		logger.Warn("LLM provider unavailable, AI variants disabled", zap.Error(err))
		provider = nil
	}

	oracle := rubric.NewScorer()
	generator := variant.NewGenerator()

	var evalCache cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		evalCache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}

	var store history.Store
	if cfg.History.Enabled && cfg.History.DBPath != "" {
		s, err := history.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			logger.Warn("history store unavailable, analysis log disabled", zap.Error(err))
		} else {
			store = s
		}
	}

	return &Engine{
		oracle:     oracle,
		classifier: classify.NewKeywordClassifier(),
		generator:  generator,
		selector:   llm.NewSelector(provider, oracle, generator, llm.ConfigFromModel(cfg.LLM), logger),
		cache:      evalCache,
		cacheTTL:   cfg.Cache.TTL,
		store:      store,
		config:     cfg,
		logger:     logger,
	}
}

// AIConfigured reports whether an AI provider is set up.
func (e *Engine) AIConfigured() bool {
	return e.selector.Configured()
}

// Analyze scores a prompt and assembles the synchronous result. When an AI
// provider is configured, Candidates[0] is a Loading placeholder and the
// caller resolves it with ResolveAIVariant.
func (e *Engine) Analyze(ctx context.Context, text string, sctx *model.SessionContext) *model.AnalysisResult {
	// 1. Score against the rubric (cache-checked).
	eval := e.evaluate(text)

	// 2. Classify intent and category.
	cls := e.classifier.Classify(text)

	// 3. Derive ranked issues.
	issues := model.DeriveIssues(eval)

	// 4. Rule-based rewrite variants; the balanced one doubles as the
	// improved prompt recorded in history.
	ruleCandidates := e.generator.Generate(text, eval, sctx)
	improved := ruleCandidates[1].Rewritten

	candidates := ruleCandidates
	if e.selector.Configured() {
		placeholder := model.RewriteCandidate{
			Kind:       model.VariantAI,
			Label:      model.VariantAI.Label(),
			KeyChanges: []string{},
			Loading:    true,
		}
		candidates = append([]model.RewriteCandidate{placeholder}, ruleCandidates...)
	}

	result := &model.AnalysisResult{
		Prompt:         text,
		Evaluation:     eval,
		Classification: &cls,
		Issues:         issues,
		Candidates:     candidates,
	}

	projectPath := ""
	if sctx != nil {
		projectPath = sctx.ProjectPath
	}

	// 5. Enrich from history. Read failures degrade to a result without
	// recommendations.
	if e.store != nil {
		if records, err := e.store.ReadAll(); err != nil {
			e.logger.Warn("history read failed", zap.Error(err))
		} else {
			result.HistoryRecommendations = history.Recommendations(records, projectPath, cls.Category, 3)
			result.ComparisonWithHistory = history.ProjectComparison(records, projectPath, eval.OverallDisplay())
		}
	}

	// 6. Persist asynchronously; the record never blocks the caller.
	if e.store != nil {
		record := &model.AnalysisRecord{
			PromptText:     text,
			Timestamp:      time.Now().UTC(),
			OverallScore:   eval.OverallDisplay(),
			Grade:          eval.Grade,
			Golden:         eval.Scores,
			Issues:         issues,
			ImprovedPrompt: improved,
			ProjectPath:    projectPath,
			Intent:         cls.Intent,
			Category:       cls.Category,
		}
		e.persist.Add(1)
		go func() {
			defer e.persist.Done()
			if err := e.store.Append(record); err != nil {
				e.logger.Warn("failed to record analysis", zap.Error(err))
			}
		}()
	}

	return result
}

// ResolveAIVariant resolves the AI candidate for an already-analyzed prompt.
// It blocks up to the configured timeout and always returns a candidate.
func (e *Engine) ResolveAIVariant(ctx context.Context, text string, eval model.GuidelineEvaluation, sctx *model.SessionContext) model.RewriteCandidate {
	return e.selector.SelectBest(ctx, text, eval, sctx)
}

// ResolveAIVariantAsync resolves the AI candidate in the background. The
// returned channel receives exactly one candidate and is then closed.
func (e *Engine) ResolveAIVariantAsync(ctx context.Context, text string, eval model.GuidelineEvaluation, sctx *model.SessionContext) <-chan model.RewriteCandidate {
	out := make(chan model.RewriteCandidate, 1)
	go func() {
		defer close(out)
		out <- e.selector.SelectBest(ctx, text, eval, sctx)
	}()
	return out
}

// Analytics exposes history analytics, or nil when history is disabled.
func (e *Engine) Analytics() *history.Analytics {
	if e.store == nil {
		return nil
	}
	return history.NewAnalytics(e.store)
}

// Close waits for in-flight history writes and releases the store.
func (e *Engine) Close() error {
	e.persist.Wait()
	if closer, ok := e.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// evaluate scores text through the cache. Cache failures fall through to a
// fresh oracle run.
func (e *Engine) evaluate(text string) model.GuidelineEvaluation {
	if e.cache == nil {
		return e.oracle.Score(text)
	}

	key := cache.Key(text)
	if data, ok := e.cache.Get(key); ok {
		var eval model.GuidelineEvaluation
		if err := json.Unmarshal(data, &eval); err == nil {
			return eval
		}
		_ = e.cache.Delete(key)
	}

	eval := e.oracle.Score(text)
	if data, err := json.Marshal(eval); err == nil {
		if err := e.cache.Set(key, data, e.cacheTTL); err != nil {
			e.logger.Debug("evaluation cache write failed", zap.Error(err))
		}
	}
	return eval
}
