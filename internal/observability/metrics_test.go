package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMetricsCalculator_Calculate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{
			Time:    base,
			Level:   "INFO",
			Type:    "gate.proceed",
			Message: "gate.proceed",
			Data:    map[string]any{"action": "target-persona", "coverage": 90},
		},
		{
			Time:    base.Add(time.Hour),
			Level:   "INFO",
			Type:    "gate.warn",
			Message: "gate.warn",
			Data:    map[string]any{"action": "generate-campaign", "coverage": 67},
		},
		{
			Time:    base.Add(2 * time.Hour),
			Level:   "INFO",
			Type:    "gate.override",
			Message: "gate.override",
			Data:    map[string]any{"action": "generate-campaign", "reason": "deadline"},
		},
		{
			Time:    base.Add(3 * time.Hour),
			Level:   "INFO",
			Type:    "gate.block",
			Message: "gate.block",
			Data:    map[string]any{"action": "generate-campaign", "coverage": 20},
		},
		{
			Time:    base.Add(4 * time.Hour),
			Level:   "INFO",
			Type:    "workspace.evaluated",
			Message: "workspace.evaluated",
			Data:    map[string]any{"scope": "workspace", "avg_coverage": 57},
		},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	if m.GateDecisions != 3 {
		t.Errorf("expected 3 gate decisions, got %d", m.GateDecisions)
	}
	if m.Proceeded != 1 || m.Warned != 1 || m.Blocked != 1 {
		t.Errorf("outcomes = %d/%d/%d, want 1/1/1", m.Proceeded, m.Warned, m.Blocked)
	}
	if m.Overrides != 1 {
		t.Errorf("expected 1 override, got %d", m.Overrides)
	}
	if m.DecisionsByAction["generate-campaign"] != 2 {
		t.Errorf("expected 2 generate-campaign decisions, got %d", m.DecisionsByAction["generate-campaign"])
	}
	if m.BlockedByAction["generate-campaign"] != 1 {
		t.Errorf("expected 1 blocked generate-campaign, got %d", m.BlockedByAction["generate-campaign"])
	}
	if m.Evaluations != 1 {
		t.Errorf("expected 1 evaluation, got %d", m.Evaluations)
	}
	if m.LastAvgCoverage == nil || *m.LastAvgCoverage != 57 {
		t.Errorf("expected last avg coverage 57, got %v", m.LastAvgCoverage)
	}
	if m.EventCount != 5 {
		t.Errorf("expected 5 events, got %d", m.EventCount)
	}
	if got := m.OverrideRate(); got != 1 {
		t.Errorf("OverrideRate() = %v, want 1", got)
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("unexpected oldest event: %v", m.OldestEvent)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(4*time.Hour)) {
		t.Errorf("unexpected newest event: %v", m.NewestEvent)
	}
}

func TestMetricsCalculator_SinceFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if err := log.Write(Event{
			Time: base.Add(time.Duration(i) * 24 * time.Hour),
			Type: "gate.warn",
			Data: map[string]any{"action": "generate-campaign"},
		}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(base.Add(36 * time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.Warned != 2 {
		t.Errorf("expected 2 warnings after since, got %d", m.Warned)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.EventCount != 0 || m.OldestEvent != nil || m.LastAvgCoverage != nil {
		t.Errorf("expected zero metrics, got %+v", m)
	}
	if m.OverrideRate() != 0 {
		t.Errorf("expected zero override rate, got %v", m.OverrideRate())
	}
}
