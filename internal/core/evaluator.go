package core

import (
	"fmt"
	"sort"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// EvaluatorConfig holds the thresholds that map coverage to a status.
type EvaluatorConfig struct {
	// SafeCoverage is the minimum coverage for safe-to-decide, provided the
	// top methods are completed.
	SafeCoverage int
	// RiskCoverage is the minimum coverage for decision-at-risk. Anything
	// below is blocked.
	RiskCoverage int
	// TopMethods is how many of the highest-ranked methods must be
	// completed for safe-to-decide.
	TopMethods int
}

// DefaultEvaluatorConfig returns the 80/50/top-2 thresholds.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		SafeCoverage: 80,
		RiskCoverage: 50,
		TopMethods:   2,
	}
}

// Validate checks that 0 <= RiskCoverage <= SafeCoverage <= 100 and that at
// least one top method is required.
func (c EvaluatorConfig) Validate() error {
	if c.SafeCoverage < 0 || c.SafeCoverage > 100 {
		return fmt.Errorf("safe coverage must be between 0 and 100, got %d", c.SafeCoverage)
	}
	if c.RiskCoverage < 0 || c.RiskCoverage > c.SafeCoverage {
		return fmt.Errorf("risk coverage must be between 0 and safe coverage (%d), got %d", c.SafeCoverage, c.RiskCoverage)
	}
	if c.TopMethods < 1 {
		return fmt.Errorf("top methods must be at least 1, got %d", c.TopMethods)
	}
	return nil
}

// Evaluator turns an entity's research methods into a decision verdict.
type Evaluator interface {
	Evaluate(item models.ResearchItem) models.DecisionStatusInfo
	Catalog() *MethodCatalog
	Config() EvaluatorConfig
}

// statusEvaluator implements Evaluator over an injected catalog. It holds no
// mutable state.
type statusEvaluator struct {
	catalog *MethodCatalog
	cfg     EvaluatorConfig
}

// NewEvaluator creates an Evaluator. A nil catalog falls back to
// DefaultMethodCatalog.
func NewEvaluator(catalog *MethodCatalog, cfg EvaluatorConfig) (Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evaluator config: %w", err)
	}
	if catalog == nil {
		catalog = DefaultMethodCatalog()
	}
	return &statusEvaluator{catalog: catalog, cfg: cfg}, nil
}

// NewDefaultEvaluator returns an Evaluator with the default catalog and thresholds.
func NewDefaultEvaluator() Evaluator {
	return &statusEvaluator{catalog: DefaultMethodCatalog(), cfg: DefaultEvaluatorConfig()}
}

func (e *statusEvaluator) Catalog() *MethodCatalog { return e.catalog }

func (e *statusEvaluator) Config() EvaluatorConfig { return e.cfg }

// rankedMethod is a method joined with its catalog rank.
type rankedMethod struct {
	models.ResearchMethod
	rank int
}

// Evaluate computes the verdict for item. It never modifies item's methods
// and never panics on malformed records.
func (e *statusEvaluator) Evaluate(item models.ResearchItem) models.DecisionStatusInfo {
	var raw []models.ResearchMethod
	if item != nil {
		raw = item.ResearchMethods()
	}
	methods := normalizeMethods(raw)

	completed := make([]models.MethodType, 0, len(methods))
	completedCount := 0
	for _, m := range methods {
		if !m.Status.Completed() {
			continue
		}
		completedCount++
		if m.Type != "" {
			completed = append(completed, m.Type)
		}
	}
	coverage := roundedPercent(completedCount, len(methods))

	ranked := e.rank(methods)
	top := ranked
	if len(top) > e.cfg.TopMethods {
		top = top[:e.cfg.TopMethods]
	}

	topDone := true
	missing := make([]models.MethodType, 0, len(top))
	for _, m := range top {
		if m.Status.Completed() {
			continue
		}
		topDone = false
		if m.Type != "" {
			missing = append(missing, m.Type)
		}
	}

	info := models.DecisionStatusInfo{
		Status:              e.decide(coverage, topDone),
		Coverage:            coverage,
		CompletedMethods:    completed,
		TopMethodsCompleted: topDone,
		MissingTopMethods:   missing,
	}
	e.advise(&info, ranked, len(methods))
	return info
}

// decide applies the thresholds in order; the first match wins.
func (e *statusEvaluator) decide(coverage int, topDone bool) models.DecisionStatus {
	switch {
	case coverage >= e.cfg.SafeCoverage && topDone:
		return models.StatusSafeToDecide
	case coverage >= e.cfg.RiskCoverage:
		return models.StatusDecisionAtRisk
	default:
		return models.StatusBlocked
	}
}

// rank joins methods with their catalog rank and stable-sorts them, so
// equal ranks keep their input order.
func (e *statusEvaluator) rank(methods []models.ResearchMethod) []rankedMethod {
	ranked := make([]rankedMethod, len(methods))
	for i, m := range methods {
		r, _ := e.catalog.Rank(m.Type)
		ranked[i] = rankedMethod{ResearchMethod: m, rank: r}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].rank < ranked[j].rank
	})
	return ranked
}

// normalizeMethods collapses duplicate method types into one record holding
// the most advanced status and the highest progress. The merged record
// keeps the position of the first occurrence. Records without a type are
// never merged.
func normalizeMethods(in []models.ResearchMethod) []models.ResearchMethod {
	out := make([]models.ResearchMethod, 0, len(in))
	index := make(map[models.MethodType]int, len(in))
	for _, m := range in {
		if m.Type == "" {
			out = append(out, m)
			continue
		}
		if i, seen := index[m.Type]; seen {
			out[i] = mergeDuplicate(out[i], m)
			continue
		}
		index[m.Type] = len(out)
		out = append(out, m)
	}
	return out
}

func mergeDuplicate(a, b models.ResearchMethod) models.ResearchMethod {
	merged := a
	if b.Status.Advancement() > a.Status.Advancement() {
		merged.Status = b.Status
	}
	if b.Progress != nil && (a.Progress == nil || *b.Progress > *a.Progress) {
		merged.Progress = b.Progress
	}
	return merged
}

// roundedPercent returns round-half-up(100*n/d) using integer arithmetic,
// or 0 when d is 0.
func roundedPercent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return (200*n + d) / (2 * d)
}

// roundedMean returns the round-half-up mean of values, or 0 when empty.
func roundedMean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	n := len(values)
	return (2*sum + n) / (2 * n)
}
