package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptlens/promptlens/internal/history"
	"github.com/promptlens/promptlens/internal/model"
)

var (
	windowDays int
	limitCount int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Analytics over your analysis log",
	Long: `History reports trends and patterns from past prompt analyses:

  trend       daily average scores over the window
  dimensions  average GOLDEN sub-scores over the window
  weaknesses  most frequent issue categories
  patterns    issue categories trending better or worse
  streaks     runs of consecutive score improvements
  categories  per-category performance
  predict     projected next score from the recent trajectory

All reports read the local log only; nothing leaves the machine.`,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().IntVar(&windowDays, "days", history.DefaultWindowDays, "analysis window in days")
	historyCmd.PersistentFlags().IntVar(&limitCount, "limit", history.DefaultLimit, "maximum entries to report")

	historyCmd.AddCommand(historyTrendCmd)
	historyCmd.AddCommand(historyDimensionsCmd)
	historyCmd.AddCommand(historyWeaknessesCmd)
	historyCmd.AddCommand(historyPatternsCmd)
	historyCmd.AddCommand(historyStreaksCmd)
	historyCmd.AddCommand(historyCategoriesCmd)
	historyCmd.AddCommand(historyPredictCmd)
}

// openAnalytics opens the analysis log read side.
func openAnalytics() (*history.Analytics, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil, fmt.Errorf("history is disabled in the configuration")
	}
	store, err := history.NewSQLiteStore(cfg.History.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open analysis log: %w", err)
	}
	return history.NewAnalytics(store), func() { _ = store.Close() }, nil
}

var historyTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Daily average scores over the window",
	RunE: func(cmd *cobra.Command, args []string) error {
		analytics, closeStore, err := openAnalytics()
		if err != nil {
			return err
		}
		defer closeStore()

		points, err := analytics.ScoreTrend(windowDays)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			fmt.Printf("No analyses in the last %d days.\n", windowDays)
			return nil
		}

		fmt.Printf("Score trend, last %d days:\n\n", windowDays)
		for _, p := range points {
			fmt.Printf("  %s  %s %5.1f  (%d prompts)\n", p.Date, scoreBar(p.AvgScore/100), p.AvgScore, p.Count)
		}
		return nil
	},
}

var historyDimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "Average GOLDEN sub-scores over the window",
	RunE: func(cmd *cobra.Command, args []string) error {
		analytics, closeStore, err := openAnalytics()
		if err != nil {
			return err
		}
		defer closeStore()

		averages, err := analytics.GoldenAverages(windowDays)
		if err != nil {
			return err
		}

		fmt.Printf("Average dimension scores, last %d days:\n\n", windowDays)
		for _, d := range model.Dimensions() {
			score := averages.At(d)
			fmt.Printf("  %-12s %s %3d/100\n", d.Label(), scoreBar(score), int(score*100+0.5))
		}
		return nil
	},
}

var historyWeaknessesCmd = &cobra.Command{
	Use:   "weaknesses",
	Short: "Most frequent issue categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		analytics, closeStore, err := openAnalytics()
		if err != nil {
			return err
		}
		defer closeStore()

		weaknesses, err := analytics.TopWeaknesses(limitCount)
		if err != nil {
			return err
		}
		if len(weaknesses) == 0 {
			fmt.Println("No recurring weaknesses recorded yet.")
			return nil
		}

		fmt.Println("Most frequent weaknesses:")
		fmt.Println()
		for i, w := range weaknesses {
			fmt.Printf("  %d. %-20s %3d times  (last seen %s)\n",
				i+1, w.Category, w.Count, w.LastSeen.Format("2006-01-02"))
		}
		return nil
	},
}

var historyPatternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Issue categories trending better or worse",
	RunE: func(cmd *cobra.Command, args []string) error {
		analytics, closeStore, err := openAnalytics()
		if err != nil {
			return err
		}
		defer closeStore()

		patterns, err := analytics.IssuePatterns(windowDays)
		if err != nil {
			return err
		}
		if len(patterns) == 0 {
			fmt.Printf("No issues recorded in the last %d days.\n", windowDays)
			return nil
		}

		fmt.Printf("Issue patterns, last %d days:\n\n", windowDays)
		for _, p := range patterns {
			fmt.Printf("  %-20s ×%-3d %-10s worst severity: %s\n",
				p.Category, p.Count, p.Trend, p.Severity)
		}
		return nil
	},
}

var historyStreaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Runs of consecutive score improvements",
	RunE: func(cmd *cobra.Command, args []string) error {
		analytics, closeStore, err := openAnalytics()
		if err != nil {
			return err
		}
		defer closeStore()

		streaks, err := analytics.ConsecutiveImprovements(limitCount)
		if err != nil {
			return err
		}
		if len(streaks) == 0 {
			fmt.Println("No improvement streaks yet. Analyze a few prompts and come back.")
			return nil
		}

		fmt.Println("Improvement streaks, most recent first:")
		fmt.Println()
		for _, s := range streaks {
			fmt.Printf("  %s to %s: %d improvements, +%d points (%.1f/day)\n",
				s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"),
				s.ImprovementCount, s.ScoreIncrease, s.AverageGain)
		}
		return nil
	},
}

var historyCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Per-category performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		analytics, closeStore, err := openAnalytics()
		if err != nil {
			return err
		}
		defer closeStore()

		categories, err := analytics.CategoryPerformance()
		if err != nil {
			return err
		}
		if len(categories) == 0 {
			fmt.Println("No categorized analyses recorded yet.")
			return nil
		}

		fmt.Println("Category performance:")
		fmt.Println()
		for _, c := range categories {
			line := fmt.Sprintf("  %-12s avg %5.1f  best %3d  ×%-3d %s",
				c.Category, c.AverageScore, c.BestScore, c.Count, c.Trend)
			if c.CommonWeakness != "" {
				line += fmt.Sprintf("  (watch: %s)", c.CommonWeakness)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var historyPredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Projected next score from the recent trajectory",
	RunE: func(cmd *cobra.Command, args []string) error {
		analytics, closeStore, err := openAnalytics()
		if err != nil {
			return err
		}
		defer closeStore()

		prediction, err := analytics.PredictedScore(windowDays)
		if err != nil {
			return err
		}

		fmt.Printf("Predicted next score: %.0f/100 (confidence: %s)\n",
			prediction.PredictedScore, prediction.Confidence)
		switch {
		case prediction.Trend > 0:
			fmt.Printf("Trajectory: improving about %d points per day.\n", prediction.Trend)
		case prediction.Trend < 0:
			fmt.Printf("Trajectory: declining about %d points per day.\n", -prediction.Trend)
		default:
			fmt.Println("Trajectory: flat.")
		}
		if prediction.Confidence == history.ConfidenceLow {
			fmt.Fprintln(os.Stderr, strings.TrimSpace(`
Low confidence: the log has too few recent analyses for a stable fit.`))
		}
		return nil
	},
}
