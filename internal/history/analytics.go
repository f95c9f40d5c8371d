package history

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/promptlens/promptlens/internal/model"
)

// Analytics defaults and calibration constants. The trend threshold and
// streak cutoff are product-tunable; everything downstream reads them from
// here.
const (
	DefaultWindowDays = 30
	DefaultLimit      = 5

	// TrendThreshold is the relative change between the two halves of a
	// window beyond which a series counts as improving or worsening.
	TrendThreshold = 0.20

	// MinStreakTransitions is the minimum number of non-decreasing
	// transitions for a streak to be reported.
	MinStreakTransitions = 2

	// VarianceThreshold is the residual variance (score points squared)
	// below which a prediction earns high confidence.
	VarianceThreshold = 64.0
)

// Trend is the coarse three-way classification of a time series.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendDeclining Trend = "declining" // worsening, relabeled for category performance
	TrendStable    Trend = "stable"
)

// Confidence grades how trustworthy a prediction is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// TrendPoint is one day's bucket of the score trend.
type TrendPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	AvgScore float64 `json:"avg_score"`
	Count    int     `json:"count"`
}

// IssueFrequency is one entry of the top-weaknesses ranking.
type IssueFrequency struct {
	Category string    `json:"category"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// IssuePattern tracks how often one issue category occurs and whether it is
// getting better or worse across the window.
type IssuePattern struct {
	Category    string              `json:"category"`
	Severity    model.IssueSeverity `json:"severity"` // worst observed
	Count       int                 `json:"count"`
	RecentCount int                 `json:"recent_count"`
	Trend       Trend               `json:"trend"`
}

// Streak is a maximal run of chronologically consecutive analyses with
// non-decreasing overall score.
type Streak struct {
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	ImprovementCount int       `json:"improvement_count"` // transitions, not records
	ScoreIncrease    int       `json:"score_increase"`
	AverageGain      float64   `json:"average_gain"` // points per day
}

// CategoryPerformance summarizes one prompt category's history.
type CategoryPerformance struct {
	Category       string  `json:"category"`
	Count          int     `json:"count"`
	AverageScore   float64 `json:"average_score"`
	BestScore      int     `json:"best_score"`
	Trend          Trend   `json:"trend"`
	CommonWeakness string  `json:"common_weakness,omitempty"`
}

// PredictedScore is the regression-based forecast of the next analysis score.
type PredictedScore struct {
	PredictedScore float64    `json:"predicted_score"` // clamped to [0,100]
	Confidence     Confidence `json:"confidence"`
	Trend          int        `json:"trend"` // signed slope, points per day
}

// All analytics functions are pure and deterministic over the ascending
// record slice; none mutate it. Fewer than 2 records yields a neutral result,
// never an error.

// ScoreTrend buckets records by day within the window. Days with no records
// are omitted.
func ScoreTrend(records []model.AnalysisRecord, days int, now time.Time) []TrendPoint {
	if days <= 0 {
		days = DefaultWindowDays
	}
	windowed := inWindow(records, days, now)

	totals := make(map[string]int)
	counts := make(map[string]int)
	for _, rec := range windowed {
		date := rec.Timestamp.UTC().Format("2006-01-02")
		totals[date] += rec.OverallScore
		counts[date]++
	}

	dates := make([]string, 0, len(counts))
	for date := range counts {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]TrendPoint, 0, len(dates))
	for _, date := range dates {
		points = append(points, TrendPoint{
			Date:     date,
			AvgScore: float64(totals[date]) / float64(counts[date]),
			Count:    counts[date],
		})
	}
	return points
}

// GoldenAverages returns the per-dimension mean over the window.
func GoldenAverages(records []model.AnalysisRecord, days int, now time.Time) model.GoldenScoreVector {
	if days <= 0 {
		days = DefaultWindowDays
	}
	windowed := inWindow(records, days, now)

	var avg model.GoldenScoreVector
	if len(windowed) == 0 {
		return avg
	}
	for _, rec := range windowed {
		for _, d := range model.Dimensions() {
			avg.Set(d, avg.At(d)+rec.Golden.At(d))
		}
	}
	n := float64(len(windowed))
	for _, d := range model.Dimensions() {
		avg.Set(d, avg.At(d)/n)
	}
	return avg
}

// TopWeaknesses ranks issue categories by frequency, descending; ties break
// toward the most recently seen category.
func TopWeaknesses(records []model.AnalysisRecord, limit int) []IssueFrequency {
	if limit <= 0 {
		limit = DefaultLimit
	}

	freq := make(map[string]*IssueFrequency)
	for _, rec := range records {
		for _, issue := range rec.Issues {
			entry, ok := freq[issue.Category]
			if !ok {
				entry = &IssueFrequency{Category: issue.Category}
				freq[issue.Category] = entry
			}
			entry.Count++
			if rec.Timestamp.After(entry.LastSeen) {
				entry.LastSeen = rec.Timestamp
			}
		}
	}

	ranked := make([]IssueFrequency, 0, len(freq))
	for _, entry := range freq {
		ranked = append(ranked, *entry)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].LastSeen.After(ranked[j].LastSeen)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// IssuePatterns compares each category's frequency in the most recent half
// of the window against the earlier half.
func IssuePatterns(records []model.AnalysisRecord, days int, now time.Time) []IssuePattern {
	if days <= 0 {
		days = DefaultWindowDays
	}
	windowed := inWindow(records, days, now)
	midpoint := now.Add(-time.Duration(days) * 24 * time.Hour / 2)

	type tally struct {
		total    int
		recent   int
		severity model.IssueSeverity
	}
	tallies := make(map[string]*tally)
	var order []string

	for _, rec := range windowed {
		for _, issue := range rec.Issues {
			t, ok := tallies[issue.Category]
			if !ok {
				t = &tally{severity: issue.Severity}
				tallies[issue.Category] = t
				order = append(order, issue.Category)
			}
			t.total++
			if !rec.Timestamp.Before(midpoint) {
				t.recent++
			}
			if severityRank(issue.Severity) < severityRank(t.severity) {
				t.severity = issue.Severity
			}
		}
	}

	patterns := make([]IssuePattern, 0, len(order))
	for _, category := range order {
		t := tallies[category]
		earlier := t.total - t.recent
		patterns = append(patterns, IssuePattern{
			Category:    category,
			Severity:    t.severity,
			Count:       t.total,
			RecentCount: t.recent,
			Trend:       halfTrend(float64(earlier), float64(t.recent), TrendWorsening),
		})
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})
	return patterns
}

// ConsecutiveImprovements finds maximal non-decreasing runs and returns the
// limit most recent ones that span at least MinStreakTransitions transitions.
func ConsecutiveImprovements(records []model.AnalysisRecord, limit int) []Streak {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(records) < 2 {
		return nil
	}

	var streaks []Streak
	start := 0
	for i := 1; i <= len(records); i++ {
		if i < len(records) && records[i].OverallScore >= records[i-1].OverallScore {
			continue
		}
		// Run ended at i-1.
		if transitions := i - 1 - start; transitions >= MinStreakTransitions {
			first, last := records[start], records[i-1]
			increase := last.OverallScore - first.OverallScore
			days := daysBetween(first.Timestamp, last.Timestamp)
			if days < 1 {
				days = 1
			}
			streaks = append(streaks, Streak{
				StartDate:        first.Timestamp,
				EndDate:          last.Timestamp,
				ImprovementCount: transitions,
				ScoreIncrease:    increase,
				AverageGain:      float64(increase) / float64(days),
			})
		}
		start = i
	}

	// Most recent first.
	sort.SliceStable(streaks, func(i, j int) bool {
		return streaks[i].EndDate.After(streaks[j].EndDate)
	})
	if len(streaks) > limit {
		streaks = streaks[:limit]
	}
	return streaks
}

// CategoryPerformanceAll groups records by category and compares each
// group's later half against its earlier half.
func CategoryPerformanceAll(records []model.AnalysisRecord) []CategoryPerformance {
	groups := make(map[string][]model.AnalysisRecord)
	var order []string
	for _, rec := range records {
		if rec.Category == "" {
			continue
		}
		if _, ok := groups[rec.Category]; !ok {
			order = append(order, rec.Category)
		}
		groups[rec.Category] = append(groups[rec.Category], rec)
	}

	out := make([]CategoryPerformance, 0, len(order))
	for _, category := range order {
		group := groups[category]

		total, best := 0, 0
		for _, rec := range group {
			total += rec.OverallScore
			if rec.OverallScore > best {
				best = rec.OverallScore
			}
		}

		trend := TrendStable
		if len(group) >= 2 {
			mid := len(group) / 2
			earlierMean := meanScore(group[:mid])
			laterMean := meanScore(group[mid:])
			// Higher scores later = improving, so the halves are inverted
			// relative to issue patterns.
			trend = halfTrend(laterMean, earlierMean, TrendDeclining)
		}

		out = append(out, CategoryPerformance{
			Category:       category,
			Count:          len(group),
			AverageScore:   float64(total) / float64(len(group)),
			BestScore:      best,
			Trend:          trend,
			CommonWeakness: commonWeakness(group),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Predict fits a least-squares line of score against day index over the
// window and extrapolates one slope step past the last fitted value.
func Predict(records []model.AnalysisRecord, windowDays int, now time.Time) PredictedScore {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	windowed := inWindow(records, windowDays, now)

	n := len(windowed)
	if n < 2 {
		p := PredictedScore{Confidence: ConfidenceLow}
		if n == 1 {
			p.PredictedScore = float64(windowed[0].OverallScore)
		}
		return p
	}

	origin := windowed[0].Timestamp
	xs := make([]float64, n)
	ys := make([]float64, n)
	var sumX, sumY float64
	for i, rec := range windowed {
		xs[i] = rec.Timestamp.Sub(origin).Hours() / 24
		ys[i] = float64(rec.OverallScore)
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}

	slope := 0.0
	if sxx > 0 {
		slope = sxy / sxx
	}
	intercept := meanY - slope*meanX

	var residualVar float64
	for i := 0; i < n; i++ {
		r := ys[i] - (intercept + slope*xs[i])
		residualVar += r * r
	}
	residualVar /= float64(n)

	predicted := intercept + slope*xs[n-1] + slope
	predicted = math.Max(0, math.Min(100, predicted))

	confidence := ConfidenceLow
	switch {
	case n >= 10 && residualVar < VarianceThreshold:
		confidence = ConfidenceHigh
	case n >= 5:
		confidence = ConfidenceMedium
	}

	return PredictedScore{
		PredictedScore: predicted,
		Confidence:     confidence,
		Trend:          int(math.Round(slope)),
	}
}

// ProjectComparison relates a score to the rolling average of records for
// one project. Returns nil when the project has no history.
func ProjectComparison(records []model.AnalysisRecord, projectPath string, currentScore int) *model.HistoryComparison {
	if projectPath == "" {
		return nil
	}
	total, count := 0, 0
	for _, rec := range records {
		if rec.ProjectPath == projectPath {
			total += rec.OverallScore
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := float64(total) / float64(count)
	return &model.HistoryComparison{
		ProjectAverage: avg,
		Delta:          float64(currentScore) - avg,
		SampleCount:    count,
	}
}

// Recommendations surfaces the recurring weaknesses for a project and/or
// category as human-readable advice.
func Recommendations(records []model.AnalysisRecord, projectPath, category string, limit int) []string {
	if limit <= 0 {
		limit = 3
	}

	var scoped []model.AnalysisRecord
	for _, rec := range records {
		if projectPath != "" && rec.ProjectPath == projectPath {
			scoped = append(scoped, rec)
			continue
		}
		if category != "" && rec.Category == category {
			scoped = append(scoped, rec)
		}
	}
	if len(scoped) < 2 {
		return nil
	}

	var recs []string
	for _, weakness := range TopWeaknesses(scoped, limit) {
		if weakness.Count < 2 {
			continue
		}
		recs = append(recs, "Recurring weakness in your history: "+weakness.Category+
			" (seen "+strconv.Itoa(weakness.Count)+" times)")
	}
	return recs
}

// helpers

func inWindow(records []model.AnalysisRecord, days int, now time.Time) []model.AnalysisRecord {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	// Records are ascending; find the first inside the window.
	idx := sort.Search(len(records), func(i int) bool {
		return !records[i].Timestamp.Before(cutoff)
	})
	return records[idx:]
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func meanScore(records []model.AnalysisRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	total := 0
	for _, rec := range records {
		total += rec.OverallScore
	}
	return float64(total) / float64(len(records))
}

// halfTrend classifies recent-vs-earlier counts (or means). lower means
// "better" for issue counts and "worse" for scores, so the caller passes the
// label used for the worsening direction.
func halfTrend(earlier, recent float64, worseLabel Trend) Trend {
	if earlier == 0 && recent == 0 {
		return TrendStable
	}
	if earlier == 0 {
		return worseLabel
	}
	change := (recent - earlier) / earlier
	switch {
	case change <= -TrendThreshold:
		return TrendImproving
	case change >= TrendThreshold:
		return worseLabel
	default:
		return TrendStable
	}
}

func commonWeakness(records []model.AnalysisRecord) string {
	counts := make(map[string]int)
	lastSeen := make(map[string]time.Time)
	for _, rec := range records {
		for _, issue := range rec.Issues {
			counts[issue.Category]++
			if rec.Timestamp.After(lastSeen[issue.Category]) {
				lastSeen[issue.Category] = rec.Timestamp
			}
		}
	}

	best := ""
	for category, count := range counts {
		if best == "" || count > counts[best] ||
			(count == counts[best] && lastSeen[category].After(lastSeen[best])) {
			best = category
		}
	}
	return best
}

func severityRank(s model.IssueSeverity) int {
	switch s {
	case model.SeverityHigh:
		return 0
	case model.SeverityMedium:
		return 1
	default:
		return 2
	}
}

