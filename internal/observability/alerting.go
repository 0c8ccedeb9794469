package observability

import (
	"fmt"
	"sort"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	MaxBlocked         int `yaml:"max_blocked" json:"max_blocked"`
	MinAvgCoverage     int `yaml:"min_avg_coverage" json:"min_avg_coverage"`
	MaxOverrides       int `yaml:"max_overrides" json:"max_overrides"`
	OverrideWindowDays int `yaml:"override_window_days" json:"override_window_days"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		MaxBlocked:         0,
		MinAvgCoverage:     50,
		MaxOverrides:       3,
		OverrideWindowDays: 7,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by reading events and checking thresholds.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate reads events and checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now()
	var alerts []Alert

	summaryAlerts, err := ae.checkLatestSummaries(now)
	if err != nil {
		return nil, fmt.Errorf("checking evaluation summaries: %w", err)
	}
	alerts = append(alerts, summaryAlerts...)

	overrideAlerts, err := ae.checkOverrides(now)
	if err != nil {
		return nil, fmt.Errorf("checking overrides: %w", err)
	}
	alerts = append(alerts, overrideAlerts...)

	return alerts, nil
}

// checkLatestSummaries inspects the most recent workspace.evaluated event
// per scope for too many blocked entities or low average coverage.
func (ae *alertEngine) checkLatestSummaries(now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{Type: "workspace.evaluated"})
	if err != nil {
		return nil, err
	}

	latest := make(map[string]Event)
	for _, event := range events {
		scope, _ := event.Data["scope"].(string)
		if scope == "" {
			continue
		}
		latest[scope] = event
	}

	scopes := make([]string, 0, len(latest))
	for scope := range latest {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	var alerts []Alert
	for _, scope := range scopes {
		event := latest[scope]
		total, _ := intField(event.Data, "total")
		if blocked, ok := intField(event.Data, "blocked_count"); ok && blocked > ae.thresholds.MaxBlocked {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("blocked-%s", scope),
				Condition:   "blocked_entities",
				Severity:    SeverityHigh,
				Message:     fmt.Sprintf("%s has %d of %d entities blocked (limit %d)", scope, blocked, total, ae.thresholds.MaxBlocked),
				TriggeredAt: now,
			})
		}
		if avg, ok := intField(event.Data, "avg_coverage"); ok && total > 0 && avg < ae.thresholds.MinAvgCoverage {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("coverage-%s", scope),
				Condition:   "low_average_coverage",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("%s average research coverage is %d%%, below %d%%", scope, avg, ae.thresholds.MinAvgCoverage),
				TriggeredAt: now,
			})
		}
	}
	return alerts, nil
}

// checkOverrides counts warn overrides inside the configured window.
func (ae *alertEngine) checkOverrides(now time.Time) ([]Alert, error) {
	since := now.AddDate(0, 0, -ae.thresholds.OverrideWindowDays)
	events, err := ae.eventLog.Read(EventFilter{Type: "gate.override", Since: &since})
	if err != nil {
		return nil, err
	}

	if len(events) <= ae.thresholds.MaxOverrides {
		return nil, nil
	}
	return []Alert{{
		ID:          "overrides",
		Condition:   "frequent_overrides",
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("%d risk warnings overridden in the last %d days (limit %d)", len(events), ae.thresholds.OverrideWindowDays, ae.thresholds.MaxOverrides),
		TriggeredAt: now,
	}}, nil
}
