package core

import "github.com/valter-silva-au/decision-quality/pkg/models"

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types recorded by core services.
const (
	EventGateProceed        = "gate.proceed"
	EventGateWarn           = "gate.warn"
	EventGateBlock          = "gate.block"
	EventGateOverride       = "gate.override"
	EventWorkspaceEvaluated = "workspace.evaluated"
)

// RecordSummary logs a workspace.evaluated event carrying the summary
// counts. scope names what was aggregated (e.g. "workspace" or a campaign
// ID). A nil logger is ignored.
func RecordSummary(events EventLogger, scope string, s models.AggregateSummary) error {
	if events == nil {
		return nil
	}
	return events.LogEvent(EventWorkspaceEvaluated, map[string]any{
		"scope":         scope,
		"total":         s.Total,
		"blocked_count": s.BlockedCount,
		"at_risk_count": s.AtRiskCount,
		"safe_count":    s.SafeCount,
		"avg_coverage":  s.AvgCoverage,
	})
}
