package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// advise fills Recommendation, Risk and NextSteps from the per-status
// templates. ranked must be the rank-sorted methods of the entity.
func (e *statusEvaluator) advise(info *models.DecisionStatusInfo, ranked []rankedMethod, total int) {
	pending := make([]string, 0, len(ranked))
	for _, m := range ranked {
		if !m.Status.Completed() {
			pending = append(pending, e.catalog.LabelFor(m.Type))
		}
	}

	switch info.Status {
	case models.StatusSafeToDecide:
		info.Recommendation = "Research coverage is sufficient. You can proceed with this decision."
		info.Risk = "Low risk: the decision is backed by completed high-priority research."
		steps := []string{"Proceed with the strategic decision"}
		for _, label := range pending {
			steps = append(steps, fmt.Sprintf("Optionally complete %s for additional confidence", label))
		}
		info.NextSteps = append(steps, "Share the research findings with stakeholders")

	case models.StatusDecisionAtRisk:
		if !info.TopMethodsCompleted {
			missing := e.labels(info.MissingTopMethods)
			info.Recommendation = fmt.Sprintf("Complete %s before making this decision.", joinLabels(missing))
			info.Risk = fmt.Sprintf("Medium risk: %d%% coverage, but the highest-priority research methods are not completed.", info.Coverage)
			steps := make([]string, 0, len(pending))
			for _, label := range missing {
				steps = append(steps, fmt.Sprintf("Complete %s (high priority)", label))
			}
			for _, label := range pending {
				if !containsString(missing, label) {
					steps = append(steps, fmt.Sprintf("Consider completing %s", label))
				}
			}
			info.NextSteps = steps
			return
		}
		gap := e.cfg.SafeCoverage - info.Coverage
		info.Recommendation = fmt.Sprintf("Increase research coverage from %d%% to at least %d%% before deciding.", info.Coverage, e.cfg.SafeCoverage)
		info.Risk = fmt.Sprintf("Medium risk: top methods are completed, but coverage is %d points short of the %d%% target.", gap, e.cfg.SafeCoverage)
		steps := make([]string, 0, len(pending))
		for _, label := range pending {
			steps = append(steps, fmt.Sprintf("Complete %s", label))
		}
		info.NextSteps = steps

	default:
		info.Recommendation = fmt.Sprintf("Do not make this decision yet. Research coverage is %d%%, below the %d%% minimum.", info.Coverage, e.cfg.RiskCoverage)
		info.Risk = "High risk: the decision would rest on insufficient research and is likely to be reversed."
		if total == 0 {
			steps := []string{"Add research methods to this item"}
			if defs := e.catalog.Definitions(); len(defs) > 0 {
				steps = append(steps, fmt.Sprintf("Start with %s", defs[0].Label))
			}
			info.NextSteps = steps
			return
		}
		steps := make([]string, 0, len(pending))
		for _, label := range pending {
			steps = append(steps, fmt.Sprintf("Complete %s", label))
		}
		info.NextSteps = steps
	}
}

func (e *statusEvaluator) labels(types []models.MethodType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = e.catalog.LabelFor(t)
	}
	return out
}

// joinLabels renders ["a"] as "a", ["a","b"] as "a and b" and longer lists
// as "a, b and c".
func joinLabels(labels []string) string {
	switch len(labels) {
	case 0:
		return "the top research methods"
	case 1:
		return labels[0]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
