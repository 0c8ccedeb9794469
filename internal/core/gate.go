package core

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// ErrGateBlocked is returned when an override is attempted on a blocked action.
var ErrGateBlocked = errors.New("action is blocked until more research is completed")

// DecideGate maps a verdict to a gate outcome. A status outside the three
// known values means the status set changed without updating the gate, and
// DecideGate panics.
func DecideGate(v models.DecisionStatusInfo) models.GateOutcome {
	switch v.Status {
	case models.StatusSafeToDecide:
		return models.GateProceed
	case models.StatusDecisionAtRisk:
		return models.GateWarn
	case models.StatusBlocked:
		return models.GateBlock
	}
	panic(fmt.Sprintf("core: DecideGate: unknown decision status %q", v.Status))
}

// ParseDecisionStatus validates a status string from an external source.
func ParseDecisionStatus(s string) (models.DecisionStatus, error) {
	for _, known := range models.DecisionStatuses {
		if string(known) == s {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown decision status %q (want safe-to-decide, decision-at-risk or blocked)", s)
}

// WorstVerdict returns the most severe verdict (blocked, then
// decision-at-risk, then safe-to-decide). The first of equally severe
// verdicts wins. It reports false for an empty slice.
func WorstVerdict(verdicts []models.DecisionStatusInfo) (models.DecisionStatusInfo, bool) {
	if len(verdicts) == 0 {
		return models.DecisionStatusInfo{}, false
	}
	worst := 0
	for i := 1; i < len(verdicts); i++ {
		if severity(verdicts[i].Status) > severity(verdicts[worst].Status) {
			worst = i
		}
	}
	return verdicts[worst], true
}

// GateDecision is the outcome of guarding one strategic action.
type GateDecision struct {
	Action  string                    `json:"action"`
	Outcome models.GateOutcome        `json:"outcome"`
	Verdict models.DecisionStatusInfo `json:"verdict"`

	// Deciding is the entity whose verdict drove the outcome. It is zero
	// for an action with no backing entities.
	Deciding models.EntityRef `json:"deciding_entity"`

	// Entities lists every entity that backs the action.
	Entities []models.EvaluatedEntity `json:"entities"`

	Acknowledged   bool   `json:"acknowledged"`
	OverrideReason string `json:"override_reason,omitempty"`
}

// Allowed reports whether the action may go ahead: either it proceeds
// outright or a warning has been acknowledged.
func (d GateDecision) Allowed() bool {
	switch d.Outcome {
	case models.GateProceed:
		return true
	case models.GateWarn:
		return d.Acknowledged
	default:
		return false
	}
}

// Gatekeeper guards strategic actions with the gating contract.
type Gatekeeper interface {
	Guard(action string, subjects []models.Subject) GateDecision
	Override(decision GateDecision, reason string) (GateDecision, error)
}

type gatekeeper struct {
	evaluator Evaluator
	events    EventLogger
	logger    *zap.Logger
}

// NewGatekeeper creates a Gatekeeper. events and logger may be nil.
func NewGatekeeper(evaluator Evaluator, events EventLogger, logger *zap.Logger) Gatekeeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gatekeeper{evaluator: evaluator, events: events, logger: logger}
}

// Guard evaluates every subject backing action, reduces the verdicts to the
// worst one and applies DecideGate to it. An action with no backing
// subjects is gated like an entity with no research.
func (g *gatekeeper) Guard(action string, subjects []models.Subject) GateDecision {
	decision := GateDecision{
		Action:   action,
		Entities: make([]models.EvaluatedEntity, 0, len(subjects)),
	}

	verdicts := make([]models.DecisionStatusInfo, 0, len(subjects))
	for _, s := range subjects {
		if s == nil {
			continue
		}
		v := g.evaluator.Evaluate(s)
		decision.Entities = append(decision.Entities, models.EvaluatedEntity{Ref: s.Ref(), Verdict: v})
		verdicts = append(verdicts, v)
	}

	worst, ok := WorstVerdict(verdicts)
	if !ok {
		worst = g.evaluator.Evaluate(models.Methods(nil))
	} else {
		for _, e := range decision.Entities {
			if e.Verdict.Status == worst.Status {
				decision.Deciding = e.Ref
				break
			}
		}
	}
	decision.Verdict = worst
	decision.Outcome = DecideGate(worst)

	g.logger.Info("gate decided",
		zap.String("action", action),
		zap.String("outcome", string(decision.Outcome)),
		zap.String("status", string(worst.Status)),
		zap.Int("coverage", worst.Coverage),
		zap.Int("entities", len(decision.Entities)),
	)
	g.record("gate."+string(decision.Outcome), decision, nil)
	return decision
}

// Override acknowledges a warning so the action may proceed. The verdict,
// including its next steps, is returned unmodified. Blocked actions cannot
// be overridden; overriding a proceed decision is a no-op.
func (g *gatekeeper) Override(decision GateDecision, reason string) (GateDecision, error) {
	switch decision.Outcome {
	case models.GateProceed:
		return decision, nil
	case models.GateBlock:
		g.logger.Warn("override refused for blocked action", zap.String("action", decision.Action))
		return decision, fmt.Errorf("overriding %q: %w", decision.Action, ErrGateBlocked)
	}

	decision.Acknowledged = true
	decision.OverrideReason = reason
	g.logger.Warn("gate warning overridden",
		zap.String("action", decision.Action),
		zap.String("reason", reason),
		zap.Int("coverage", decision.Verdict.Coverage),
	)
	g.record(EventGateOverride, decision, map[string]any{"reason": reason})
	return decision, nil
}

func (g *gatekeeper) record(eventType string, d GateDecision, extra map[string]any) {
	if g.events == nil {
		return
	}
	data := map[string]any{
		"action":   d.Action,
		"outcome":  string(d.Outcome),
		"status":   string(d.Verdict.Status),
		"coverage": d.Verdict.Coverage,
		"entity":   d.Deciding.ID,
	}
	for k, v := range extra {
		data[k] = v
	}
	if err := g.events.LogEvent(eventType, data); err != nil {
		g.logger.Warn("recording gate event", zap.String("type", eventType), zap.Error(err))
	}
}
