package recommend

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
)

// CatalogEntry is a short activity offered when current mood is below baseline.
//
// When is an optional CEL expression over:
//
//	mood     int     current mood level
//	baseline double  the user's low-mood baseline
//	deficit  double  baseline - mood
//
// An empty When always matches.
type CatalogEntry struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	TimeCostMinutes int     `json:"time_cost_minutes"`
	Confidence      float64 `json:"confidence"`
	When            string  `json:"when,omitempty"`
}

// DefaultCatalogEntries is the built-in micro-action catalog.
var DefaultCatalogEntries = []CatalogEntry{
	{ID: "breathing", Text: "Take five slow, deep breaths.", TimeCostMinutes: 1, Confidence: 0.6},
	{ID: "water", Text: "Drink a glass of water and stretch for a minute.", TimeCostMinutes: 2, Confidence: 0.5},
	{ID: "gratitude", Text: "Write down one thing that went okay today.", TimeCostMinutes: 3, Confidence: 0.55, When: "mood >= 3"},
	{ID: "message-friend", Text: "Send a short message to someone you trust.", TimeCostMinutes: 5, Confidence: 0.65, When: "deficit >= 1.0"},
	{ID: "walk", Text: "Step outside for a 10-minute walk.", TimeCostMinutes: 10, Confidence: 0.7, When: "mood >= 2"},
	{ID: "music", Text: "Put on a song that usually lifts you.", TimeCostMinutes: 4, Confidence: 0.5},
	{ID: "reach-out", Text: "Talk to someone close, or a support line, right now.", TimeCostMinutes: 15, Confidence: 0.8, When: "mood <= 2"},
}

type compiledEntry struct {
	entry   CatalogEntry
	program cel.Program
}

// Catalog holds entries with their When expressions compiled.
type Catalog struct {
	entries []compiledEntry
}

func newCatalogEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("mood", cel.IntType),
		cel.Variable("baseline", cel.DoubleType),
		cel.Variable("deficit", cel.DoubleType),
	)
}

// NewCatalog compiles the entries. It fails on an expression that does not
// compile or does not evaluate to bool.
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	env, err := newCatalogEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	c := &Catalog{entries: make([]compiledEntry, 0, len(entries))}
	for _, e := range entries {
		compiled := compiledEntry{entry: e}
		if e.When != "" {
			ast, issues := env.Compile(e.When)
			if issues != nil && issues.Err() != nil {
				return nil, fmt.Errorf("catalog entry %q: invalid condition: %w", e.ID, issues.Err())
			}
			if !ast.OutputType().IsExactType(cel.BoolType) {
				return nil, fmt.Errorf("catalog entry %q: condition must be bool, got %v", e.ID, ast.OutputType())
			}
			program, err := env.Program(ast)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %q: %w", e.ID, err)
			}
			compiled.program = program
		}
		c.entries = append(c.entries, compiled)
	}
	return c, nil
}

// DefaultCatalog compiles DefaultCatalogEntries.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCatalogEntries)
	if err != nil {
		panic(err)
	}
	return c
}

// Select returns up to limit matching entries, cheapest first, ties by id.
// Entries whose condition fails to evaluate are skipped.
func (c *Catalog) Select(mood int, baseline float64, limit int) []CatalogEntry {
	vars := map[string]any{
		"mood":     int64(mood),
		"baseline": baseline,
		"deficit":  baseline - float64(mood),
	}
	var matched []CatalogEntry
	for _, ce := range c.entries {
		if ce.program != nil {
			out, _, err := ce.program.Eval(vars)
			if err != nil {
				continue
			}
			if ok, isBool := out.Value().(bool); !isBool || !ok {
				continue
			}
		}
		matched = append(matched, ce.entry)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].TimeCostMinutes != matched[j].TimeCostMinutes {
			return matched[i].TimeCostMinutes < matched[j].TimeCostMinutes
		}
		return matched[i].ID < matched[j].ID
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
