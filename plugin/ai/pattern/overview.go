package pattern

// WeekdayMood is the mean mood for one weekday.
type WeekdayMood struct {
	Day         string  `json:"day"`
	MeanMood    float64 `json:"mean_mood"`
	SampleCount int     `json:"sample_count"`
}

// Summary is the descriptive part of a user overview.
type Summary struct {
	HasEnoughData bool          `json:"has_enough_data"`
	DataPoints    int           `json:"data_points"`
	AverageMood   float64       `json:"average_mood"`
	MoodStability float64       `json:"mood_stability"` // std-dev; lower is steadier
	Weekdays      []WeekdayMood `json:"weekdays"`
	BestDay       string        `json:"best_day,omitempty"`
	WorstDay      string        `json:"worst_day,omitempty"`
	RecentAverage float64       `json:"recent_average"` // last rolling window
	Triggers      []TriggerStat `json:"triggers"`
}

// Summarize describes the aggregation. Below MinDataPoints readings only the
// counts are filled in.
func (a *Analyzer) Summarize(agg *Aggregation) Summary {
	s := Summary{
		DataPoints: agg.Overall.Count,
		Weekdays:   []WeekdayMood{},
		Triggers:   []TriggerStat{},
	}
	if agg.Overall.Count < a.config.MinDataPoints {
		return s
	}
	s.HasEnoughData = true
	s.AverageMood = agg.Overall.Mean
	s.MoodStability = agg.Overall.StdDev

	var best, worst *DayBucket
	for i := range agg.ByWeekday {
		b := &agg.ByWeekday[i]
		s.Weekdays = append(s.Weekdays, WeekdayMood{
			Day:         WeekdayName(b.DayOfWeek),
			MeanMood:    b.MeanMood,
			SampleCount: b.SampleCount,
		})
		if best == nil || b.MeanMood > best.MeanMood {
			best = b
		}
		if worst == nil || b.MeanMood < worst.MeanMood {
			worst = b
		}
	}
	if best != nil {
		s.BestDay = WeekdayName(best.DayOfWeek)
		s.WorstDay = WeekdayName(worst.DayOfWeek)
	}
	if n := len(agg.Rolling); n > 0 {
		s.RecentAverage = agg.Rolling[n-1].MeanMood
	}
	s.Triggers = a.Triggers(agg)
	return s
}
