package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadGlobalConfig tests ---

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(DefaultGlobalConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if got := EvaluatorConfigFrom(cfg); got != DefaultEvaluatorConfig() {
		t.Errorf("EvaluatorConfigFrom = %+v, want defaults", got)
	}
}

func TestLoadGlobalConfig_ReadsDqeconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".dqeconfig.yaml", `
thresholds:
  safe_coverage: 90
  risk_coverage: 40
  top_methods: 3
alerts:
  max_blocked: 2
  max_overrides: 5
workspace_dir: data
logging:
  level: debug
  format: json
event_log:
  enabled: false
`)

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.ThresholdConfig{SafeCoverage: 90, RiskCoverage: 40, TopMethods: 3}
	if cfg.Thresholds != want {
		t.Errorf("Thresholds = %+v, want %+v", cfg.Thresholds, want)
	}
	if cfg.Alerts.MaxBlocked != 2 || cfg.Alerts.MaxOverrides != 5 {
		t.Errorf("Alerts = %+v", cfg.Alerts)
	}
	// Unset keys keep their defaults.
	if cfg.Alerts.MinAvgCoverage != 50 || cfg.Alerts.OverrideWindowDays != 7 {
		t.Errorf("Alerts defaults lost: %+v", cfg.Alerts)
	}
	if cfg.WorkspaceDir != "data" {
		t.Errorf("WorkspaceDir = %q, want %q", cfg.WorkspaceDir, "data")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.EventLog.Enabled {
		t.Error("EventLog.Enabled should be false")
	}
	if cfg.EventLog.Path != ".dqe_events.jsonl" {
		t.Errorf("EventLog.Path = %q, want default", cfg.EventLog.Path)
	}
	if diff := cmp.Diff(DefaultMethodDefinitions(), cfg.Methods); diff != "" {
		t.Errorf("methods should default to the built-in catalog (-want +got):\n%s", diff)
	}
}

func TestLoadGlobalConfig_MethodsReplaceCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".dqeconfig.yaml", `
methods:
  - type: interviews
    label: Stakeholder interviews
    rank: 1
  - type: desk-research
    label: Desk research
    rank: 2
`)

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.MethodDefinition{
		{Type: models.MethodInterviews, Label: "Stakeholder interviews", Rank: 1},
		{Type: "desk-research", Label: "Desk research", Rank: 2},
	}
	if diff := cmp.Diff(want, cfg.Methods); diff != "" {
		t.Errorf("methods mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGlobalConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".dqeconfig.yaml", `
thresholds:
  safe_coverage: 40
  risk_coverage: 60
logging:
  format: xml
methods:
  - type: workshop
    rank: 0
`)

	_, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"config validation failed", "thresholds:", "logging.format", "methods:"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestLoadGlobalConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".dqeconfig.yaml", "thresholds: [unterminated\n")

	if _, err := NewConfigurationManager(dir).LoadGlobalConfig(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	if err := cm.ValidateConfig(DefaultGlobalConfig()); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
	if err := cm.ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}

	tests := []struct {
		name    string
		mutate  func(*models.GlobalConfig)
		wantErr string
	}{
		{"no methods", func(c *models.GlobalConfig) { c.Methods = nil }, "at least one research method"},
		{"duplicate method", func(c *models.GlobalConfig) {
			c.Methods = append(c.Methods, models.MethodDefinition{Type: models.MethodWorkshop, Rank: 9})
		}, "defined more than once"},
		{"safe over 100", func(c *models.GlobalConfig) { c.Thresholds.SafeCoverage = 120 }, "safe coverage"},
		{"zero top methods", func(c *models.GlobalConfig) { c.Thresholds.TopMethods = 0 }, "top methods"},
		{"negative max blocked", func(c *models.GlobalConfig) { c.Alerts.MaxBlocked = -1 }, "alerts.max_blocked"},
		{"min avg over 100", func(c *models.GlobalConfig) { c.Alerts.MinAvgCoverage = 101 }, "alerts.min_avg_coverage"},
		{"negative window", func(c *models.GlobalConfig) { c.Alerts.OverrideWindowDays = -3 }, "alerts.override_window_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGlobalConfig()
			tt.mutate(cfg)
			err := cm.ValidateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateConfig() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
