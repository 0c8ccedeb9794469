package models

// DecisionStatus is the tri-state decision-safety verdict for an entity.
type DecisionStatus string

const (
	StatusSafeToDecide   DecisionStatus = "safe-to-decide"
	StatusDecisionAtRisk DecisionStatus = "decision-at-risk"
	StatusBlocked        DecisionStatus = "blocked"
)

// DecisionStatuses lists every known status, safest first.
var DecisionStatuses = []DecisionStatus{
	StatusSafeToDecide,
	StatusDecisionAtRisk,
	StatusBlocked,
}

// DecisionStatusInfo is the verdict produced by evaluating one entity.
// Values are never partially updated; re-evaluate when the inputs change.
type DecisionStatusInfo struct {
	Status              DecisionStatus `json:"status" yaml:"status"`
	Coverage            int            `json:"coverage" yaml:"coverage"`
	CompletedMethods    []MethodType   `json:"completed_methods" yaml:"completed_methods"`
	TopMethodsCompleted bool           `json:"top_methods_completed" yaml:"top_methods_completed"`
	MissingTopMethods   []MethodType   `json:"missing_top_methods" yaml:"missing_top_methods"`
	Recommendation      string         `json:"recommendation" yaml:"recommendation"`
	Risk                string         `json:"risk" yaml:"risk"`
	NextSteps           []string       `json:"next_steps" yaml:"next_steps"`
}

// EvaluatedEntity pairs an entity reference with its verdict.
type EvaluatedEntity struct {
	Ref     EntityRef          `json:"entity"`
	Verdict DecisionStatusInfo `json:"verdict"`
}

// AggregateSummary summarizes the verdicts of many entities. It is derived
// on request and never stored.
type AggregateSummary struct {
	Total        int                `json:"total"`
	SafeCount    int                `json:"safe_count"`
	AtRiskCount  int                `json:"at_risk_count"`
	BlockedCount int                `json:"blocked_count"`
	AvgCoverage  int                `json:"avg_coverage"`
	CountsByKind map[EntityKind]int `json:"counts_by_kind"`

	// Entries holds every evaluated entity in input order.
	Entries []EvaluatedEntity `json:"entries"`

	// UrgencyQueue holds the non-safe entities, most urgent first.
	UrgencyQueue []EvaluatedEntity `json:"urgency_queue"`
}

// Filter returns the entries whose verdict has the given status, in input order.
func (s AggregateSummary) Filter(status DecisionStatus) []EvaluatedEntity {
	var out []EvaluatedEntity
	for _, e := range s.Entries {
		if e.Verdict.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// GateOutcome is the decision taken for a strategic action.
type GateOutcome string

const (
	GateProceed GateOutcome = "proceed"
	GateWarn    GateOutcome = "warn"
	GateBlock   GateOutcome = "block"
)
