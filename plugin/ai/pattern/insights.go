package pattern

import "fmt"

// ActionableInsights phrases the strongest findings as short sentences: the
// habit with the largest positive association, the one with the largest
// negative association, the best and worst weekday, and the most frequent
// trigger of low moods. Findings without enough samples are skipped.
func ActionableInsights(summary Summary, findings []CorrelationFinding) []string {
	insights := make([]string, 0, 4)

	var best, worst *CorrelationFinding
	for i := range findings {
		f := &findings[i]
		if f.CausalHint == HintInsufficientData {
			continue
		}
		if f.CorrelationCoefficient > 0 && (best == nil || f.CorrelationCoefficient > best.CorrelationCoefficient) {
			best = f
		}
		if f.CorrelationCoefficient < 0 && (worst == nil || f.CorrelationCoefficient < worst.CorrelationCoefficient) {
			worst = f
		}
	}
	if best != nil {
		insights = append(insights, fmt.Sprintf(
			"On days with %s your mood averages %.1f/10, against %.1f/10 without it (%d times).",
			best.HabitID, best.MeanMoodWith, best.MeanMoodWithout, best.SampleCount))
	}
	if worst != nil {
		insights = append(insights, fmt.Sprintf(
			"%s goes with a lower mood (%.1f/10 vs %.1f/10). Worth a closer look?",
			worst.HabitID, worst.MeanMoodWith, worst.MeanMoodWithout))
	}

	if summary.BestDay != "" && summary.BestDay != summary.WorstDay {
		insights = append(insights, fmt.Sprintf(
			"Your %ss tend to be better (%.1f/10) than your %ss (%.1f/10).",
			summary.BestDay, weekdayMean(summary.Weekdays, summary.BestDay),
			summary.WorstDay, weekdayMean(summary.Weekdays, summary.WorstDay)))
	}

	if len(summary.Triggers) > 0 {
		top := summary.Triggers[0]
		insights = append(insights, fmt.Sprintf(
			"When your mood is low, %s comes up often (%.0f%% of the time).",
			top.Category, top.Percentage))
	}
	return insights
}

func weekdayMean(days []WeekdayMood, name string) float64 {
	for _, d := range days {
		if d.Day == name {
			return d.MeanMood
		}
	}
	return 0
}
