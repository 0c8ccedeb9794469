package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestEventLog(t *testing.T) EventLog {
	t.Helper()
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func writeSummary(t *testing.T, log EventLog, at time.Time, scope string, total, blocked, avg int) {
	t.Helper()
	err := log.Write(Event{
		Time:    at,
		Level:   "INFO",
		Type:    "workspace.evaluated",
		Message: "workspace.evaluated",
		Data: map[string]any{
			"scope":         scope,
			"total":         total,
			"blocked_count": blocked,
			"avg_coverage":  avg,
		},
	})
	if err != nil {
		t.Fatalf("writing event: %v", err)
	}
}

func findAlert(alerts []Alert, id string) *Alert {
	for i := range alerts {
		if alerts[i].ID == id {
			return &alerts[i]
		}
	}
	return nil
}

func TestAlertEngine_BlockedEntitiesAlert(t *testing.T) {
	log := newTestEventLog(t)
	writeSummary(t, log, time.Now().UTC(), "workspace", 3, 1, 57)

	alerts, err := NewAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	a := findAlert(alerts, "blocked-workspace")
	if a == nil {
		t.Fatal("expected blocked entities alert but none found")
	}
	if a.Severity != SeverityHigh {
		t.Errorf("expected high severity, got %s", a.Severity)
	}
	if a.Condition != "blocked_entities" {
		t.Errorf("unexpected condition %s", a.Condition)
	}
	if findAlert(alerts, "coverage-workspace") != nil {
		t.Error("avg coverage 57 should not trigger the 50% coverage alert")
	}
}

func TestAlertEngine_UsesLatestSummaryPerScope(t *testing.T) {
	log := newTestEventLog(t)
	now := time.Now().UTC()
	writeSummary(t, log, now.Add(-2*time.Hour), "spring", 4, 2, 30)
	writeSummary(t, log, now.Add(-time.Hour), "spring", 4, 0, 85)

	alerts, err := NewAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts after research improved, got %+v", alerts)
	}
}

func TestAlertEngine_LowCoverageAlert(t *testing.T) {
	log := newTestEventLog(t)
	writeSummary(t, log, time.Now().UTC(), "spring", 2, 0, 40)

	alerts, err := NewAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	a := findAlert(alerts, "coverage-spring")
	if a == nil {
		t.Fatal("expected low coverage alert")
	}
	if a.Severity != SeverityMedium {
		t.Errorf("expected medium severity, got %s", a.Severity)
	}
}

func TestAlertEngine_EmptyScopeSkipsCoverage(t *testing.T) {
	log := newTestEventLog(t)
	writeSummary(t, log, time.Now().UTC(), "empty", 0, 0, 0)

	alerts, err := NewAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts for an empty scope, got %+v", alerts)
	}
}

func TestAlertEngine_FrequentOverrides(t *testing.T) {
	log := newTestEventLog(t)
	now := time.Now().UTC()

	// One override outside the window, four inside.
	times := []time.Time{
		now.AddDate(0, 0, -10),
		now.Add(-time.Hour),
		now.Add(-2 * time.Hour),
		now.Add(-3 * time.Hour),
		now.Add(-4 * time.Hour),
	}
	for _, at := range times {
		if err := log.Write(Event{Time: at, Level: "WARN", Type: "gate.override", Data: map[string]any{"action": "generate-campaign"}}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	alerts, err := NewAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	if findAlert(alerts, "overrides") == nil {
		t.Fatal("expected frequent overrides alert")
	}

	relaxed := DefaultAlertThresholds()
	relaxed.MaxOverrides = 4
	alerts, err = NewAlertEngine(log, relaxed).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	if findAlert(alerts, "overrides") != nil {
		t.Error("4 overrides should not exceed a limit of 4")
	}
}

func TestAlertEngine_NoEvents(t *testing.T) {
	log := newTestEventLog(t)
	alerts, err := NewAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %d", len(alerts))
	}
}
