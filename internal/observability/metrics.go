package observability

import (
	"fmt"
	"time"
)

// Metrics holds gate and evaluation metrics derived from the event log.
type Metrics struct {
	GateDecisions     int            `json:"gate_decisions"`
	Proceeded         int            `json:"proceeded"`
	Warned            int            `json:"warned"`
	Blocked           int            `json:"blocked"`
	Overrides         int            `json:"overrides"`
	DecisionsByAction map[string]int `json:"decisions_by_action"`
	BlockedByAction   map[string]int `json:"blocked_by_action"`
	Evaluations       int            `json:"evaluations"`
	LastAvgCoverage   *int           `json:"last_avg_coverage,omitempty"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// OverrideRate returns overrides as a share of warnings, or 0 when no
// warning was issued.
func (m *Metrics) OverrideRate() float64 {
	if m.Warned == 0 {
		return 0
	}
	return float64(m.Overrides) / float64(m.Warned)
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		DecisionsByAction: make(map[string]int),
		BlockedByAction:   make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		action, _ := event.Data["action"].(string)

		switch event.Type {
		case "gate.proceed", "gate.warn", "gate.block":
			m.GateDecisions++
			if action != "" {
				m.DecisionsByAction[action]++
			}
			switch event.Type {
			case "gate.proceed":
				m.Proceeded++
			case "gate.warn":
				m.Warned++
			default:
				m.Blocked++
				if action != "" {
					m.BlockedByAction[action]++
				}
			}
		case "gate.override":
			m.Overrides++
		case "workspace.evaluated":
			m.Evaluations++
			if avg, ok := intField(event.Data, "avg_coverage"); ok {
				m.LastAvgCoverage = &avg
			}
		}
	}

	return m, nil
}

// intField reads a numeric value from event data. Values decoded from JSON
// arrive as float64; values written in-process may still be int.
func intField(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
