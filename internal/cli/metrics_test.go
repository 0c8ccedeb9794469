package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/decision-quality/internal/observability"
)

// --- parseSinceDuration unit tests ---

func TestParseSinceDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{"empty defaults to 7d", "", false, ""},
		{"whitespace defaults to 7d", "  ", false, ""},
		{"valid 7d", "7d", false, ""},
		{"valid 30d", "30d", false, ""},
		{"valid 24h", "24h", false, ""},
		{"valid 1h", "1h", false, ""},
		{"invalid suffix", "abc", true, "unsupported duration format"},
		{"invalid day number", "xd", true, "invalid day duration"},
		{"invalid hour number", "yh", true, "invalid hour duration"},
		{"negative day is still valid", "-5d", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSinceDuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

// --- metricsCmd tests ---

func TestMetricsCmd_NilCalculator(t *testing.T) {
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()
	MetricsCalc = nil

	err := metricsCmd.RunE(metricsCmd, []string{})
	if err == nil {
		t.Fatal("expected error when MetricsCalc is nil")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMetricsCmd_InvalidSinceFormat(t *testing.T) {
	orig := MetricsCalc
	origSince := metricsSince
	defer func() {
		MetricsCalc = orig
		metricsSince = origSince
	}()

	MetricsCalc = &metricsMock{
		calcFn: func(since time.Time) (*observability.Metrics, error) {
			return &observability.Metrics{}, nil
		},
	}

	tests := []struct {
		name   string
		since  string
		errMsg string
	}{
		{"invalid suffix", "abc", "unsupported duration format"},
		{"invalid day number", "xd", "invalid day duration"},
		{"invalid hour number", "yh", "invalid hour duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metricsSince = tt.since
			err := metricsCmd.RunE(metricsCmd, []string{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestMetricsCmd_Success_TableFormat(t *testing.T) {
	orig := MetricsCalc
	origSince := metricsSince
	origJSON := metricsJSON
	defer func() {
		MetricsCalc = orig
		metricsSince = origSince
		metricsJSON = origJSON
	}()

	metricsSince = "7d"
	metricsJSON = false

	avg := 62
	MetricsCalc = &metricsMock{
		calcFn: func(since time.Time) (*observability.Metrics, error) {
			return &observability.Metrics{
				GateDecisions:     6,
				Proceeded:         2,
				Warned:            2,
				Blocked:           2,
				Overrides:         1,
				Evaluations:       3,
				LastAvgCoverage:   &avg,
				EventCount:        42,
				DecisionsByAction: map[string]int{"target-persona": 2, "generate-campaign": 4},
				BlockedByAction:   map[string]int{"generate-campaign": 2},
			}, nil
		},
	}

	var out bytes.Buffer
	metricsCmd.SetOut(&out)
	defer metricsCmd.SetOut(nil)

	if err := metricsCmd.RunE(metricsCmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Gate decisions:", "1 (50% of warnings)", "Last average coverage:", "62%", "generate-campaign:", "4 (2 blocked)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output should contain %q, got:\n%s", want, got)
		}
	}
	if strings.Index(got, "generate-campaign") > strings.Index(got, "target-persona") {
		t.Error("actions should be listed in sorted order")
	}
}

func TestMetricsCmd_Success_JSONFormat(t *testing.T) {
	orig := MetricsCalc
	origSince := metricsSince
	origJSON := metricsJSON
	defer func() {
		MetricsCalc = orig
		metricsSince = origSince
		metricsJSON = origJSON
	}()

	metricsSince = "30d"
	metricsJSON = true

	var gotSince time.Time
	MetricsCalc = &metricsMock{
		calcFn: func(since time.Time) (*observability.Metrics, error) {
			gotSince = since
			return &observability.Metrics{
				GateDecisions: 2,
				EventCount:    10,
			}, nil
		},
	}

	var out bytes.Buffer
	metricsCmd.SetOut(&out)
	defer metricsCmd.SetOut(nil)

	if err := metricsCmd.RunE(metricsCmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if decoded["gate_decisions"] != float64(2) {
		t.Errorf("gate_decisions = %v, want 2", decoded["gate_decisions"])
	}
	if age := time.Since(gotSince); age < 29*24*time.Hour {
		t.Errorf("--since 30d gave a window of %s", age)
	}
}

func TestMetricsCmd_CalculateError(t *testing.T) {
	orig := MetricsCalc
	origSince := metricsSince
	defer func() {
		MetricsCalc = orig
		metricsSince = origSince
	}()

	metricsSince = "7d"

	MetricsCalc = &metricsMock{
		calcFn: func(since time.Time) (*observability.Metrics, error) {
			return nil, fmt.Errorf("event log corrupted")
		},
	}

	err := metricsCmd.RunE(metricsCmd, []string{})
	if err == nil {
		t.Fatal("expected error from Calculate")
	}
	if !strings.Contains(err.Error(), "calculating metrics") {
		t.Errorf("unexpected error: %v", err)
	}
}
