package pattern

// Analyzer runs the aggregation and the analyses over one user's records.
// It holds no per-user state and is safe for concurrent use.
type Analyzer struct {
	config     AnalysisConfig
	classifier TriggerClassifier
}

// NewAnalyzer creates an Analyzer. A nil classifier selects the default KeywordClassifier.
func NewAnalyzer(config AnalysisConfig, classifier TriggerClassifier) *Analyzer {
	if classifier == nil {
		classifier = NewKeywordClassifier(nil)
	}
	return &Analyzer{
		config:     config.withDefaults(),
		classifier: classifier,
	}
}

// Config returns the effective configuration.
func (a *Analyzer) Config() AnalysisConfig {
	return a.config
}
