package history

import (
	"time"

	"github.com/promptlens/promptlens/internal/model"
)

// Analytics binds the pure analytics functions to a Store. Each call reads a
// fresh snapshot of the log; records are immutable once written, so no
// further isolation is needed.
type Analytics struct {
	store Store
	nowFn func() time.Time
}

// NewAnalytics creates an analytics service over a store.
func NewAnalytics(store Store) *Analytics {
	return &Analytics{
		store: store,
		nowFn: time.Now,
	}
}

func (a *Analytics) ScoreTrend(days int) ([]TrendPoint, error) {
	records, err := a.store.ReadAll()
	if err != nil {
		return nil, err
	}
	return ScoreTrend(records, days, a.nowFn()), nil
}

func (a *Analytics) GoldenAverages(days int) (model.GoldenScoreVector, error) {
	records, err := a.store.ReadAll()
	if err != nil {
		return model.GoldenScoreVector{}, err
	}
	return GoldenAverages(records, days, a.nowFn()), nil
}

func (a *Analytics) TopWeaknesses(limit int) ([]IssueFrequency, error) {
	records, err := a.store.ReadAll()
	if err != nil {
		return nil, err
	}
	return TopWeaknesses(records, limit), nil
}

func (a *Analytics) IssuePatterns(days int) ([]IssuePattern, error) {
	records, err := a.store.ReadAll()
	if err != nil {
		return nil, err
	}
	return IssuePatterns(records, days, a.nowFn()), nil
}

func (a *Analytics) ConsecutiveImprovements(limit int) ([]Streak, error) {
	records, err := a.store.ReadAll()
	if err != nil {
		return nil, err
	}
	return ConsecutiveImprovements(records, limit), nil
}

func (a *Analytics) CategoryPerformance() ([]CategoryPerformance, error) {
	records, err := a.store.ReadAll()
	if err != nil {
		return nil, err
	}
	return CategoryPerformanceAll(records), nil
}

func (a *Analytics) PredictedScore(windowDays int) (PredictedScore, error) {
	records, err := a.store.ReadAll()
	if err != nil {
		return PredictedScore{}, err
	}
	return Predict(records, windowDays, a.nowFn()), nil
}
