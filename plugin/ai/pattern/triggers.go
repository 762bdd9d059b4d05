package pattern

import (
	"sort"
	"strings"
)

// TriggerClassifier maps a free-text note to zero or more trigger categories.
type TriggerClassifier interface {
	Classify(note string) []string
}

// TriggerStat counts how often a category appears in low-mood notes.
type TriggerStat struct {
	Category    string  `json:"category"`
	Occurrences int     `json:"occurrences"`
	Percentage  float64 `json:"percentage"`
}

// DefaultTriggerKeywords is the keyword table used by the default classifier.
var DefaultTriggerKeywords = map[string][]string{
	"work":          {"work", "job", "boss", "deadline", "meeting", "office"},
	"relationships": {"partner", "friend", "family", "argument", "breakup", "fight"},
	"health":        {"sick", "tired", "pain", "headache", "sleep", "insomnia"},
	"stress":        {"stress", "anxious", "overwhelmed", "pressure", "worried"},
	"loneliness":    {"lonely", "alone", "isolated", "nobody"},
}

// KeywordClassifier matches lower-cased notes against per-category keywords.
type KeywordClassifier struct {
	categories []string
	keywords   map[string][]string
}

// NewKeywordClassifier builds a classifier; nil selects DefaultTriggerKeywords.
func NewKeywordClassifier(keywords map[string][]string) *KeywordClassifier {
	if keywords == nil {
		keywords = DefaultTriggerKeywords
	}
	categories := make([]string, 0, len(keywords))
	for category := range keywords {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return &KeywordClassifier{categories: categories, keywords: keywords}
}

// Classify returns the matching categories in alphabetical order.
func (c *KeywordClassifier) Classify(note string) []string {
	text := strings.ToLower(note)
	if text == "" {
		return nil
	}
	var matched []string
	for _, category := range c.categories {
		for _, kw := range c.keywords[category] {
			if strings.Contains(text, kw) {
				matched = append(matched, category)
				break
			}
		}
	}
	return matched
}

// Triggers counts trigger categories over readings at or below LowMoodLevel.
// Percentages are relative to the number of low readings.
func (a *Analyzer) Triggers(agg *Aggregation) []TriggerStat {
	counts := make(map[string]int)
	low := 0
	for _, m := range agg.Moods {
		if m.Level > a.config.LowMoodLevel {
			continue
		}
		low++
		for _, category := range a.classifier.Classify(m.Note) {
			counts[category]++
		}
	}

	stats := make([]TriggerStat, 0, len(counts))
	for category, n := range counts {
		stats = append(stats, TriggerStat{
			Category:    category,
			Occurrences: n,
			Percentage:  float64(n) / float64(low) * 100,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Occurrences != stats[j].Occurrences {
			return stats[i].Occurrences > stats[j].Occurrences
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}
