package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

func runSummary(t *testing.T, campaign string, jsonOut, needsValidation bool) (string, error) {
	t.Helper()
	origCampaign, origJSON, origNV := summaryCampaign, summaryJSON, summaryNeedsValidation
	defer func() {
		summaryCampaign, summaryJSON, summaryNeedsValidation = origCampaign, origJSON, origNV
	}()
	summaryCampaign, summaryJSON, summaryNeedsValidation = campaign, jsonOut, needsValidation

	var out bytes.Buffer
	summaryCmd.SetOut(&out)
	defer summaryCmd.SetOut(nil)
	err := summaryCmd.RunE(summaryCmd, nil)
	return out.String(), err
}

func TestSummaryCmd_Workspace(t *testing.T) {
	events := withEngine(t, sampleWorkspace())

	out, err := runSummary(t, "", false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Decision summary (workspace)", "Average coverage:", "56%", "Urgency queue (2)", "vision", "cfo"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}

	if diff := cmp.Diff([]string{core.EventWorkspaceEvaluated}, events.types); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	data := events.data[0]
	if data["scope"] != "workspace" || data["blocked_count"] != 1 || data["avg_coverage"] != 56 {
		t.Errorf("unexpected summary event data: %v", data)
	}
}

func TestSummaryCmd_CampaignJSON(t *testing.T) {
	events := withEngine(t, sampleWorkspace())

	out, err := runSummary(t, "spring", true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got models.AggregateSummary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	// mission 100 and cfo 67.
	if got.Total != 2 || got.AvgCoverage != 84 || got.AtRiskCount != 1 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if events.data[0]["scope"] != "spring" {
		t.Errorf("scope = %v, want spring", events.data[0]["scope"])
	}
}

func TestSummaryCmd_NeedsValidation(t *testing.T) {
	withEngine(t, sampleWorkspace())

	out, err := runSummary(t, "", false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Needs validation (1)") || !strings.Contains(out, "cfo") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "vision") {
		t.Errorf("blocked entity listed as needing validation:\n%s", out)
	}
}

func TestSummaryCmd_NeedsValidationJSONEmpty(t *testing.T) {
	withEngine(t, sampleWorkspace())

	out, err := runSummary(t, "safe-only", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("output = %q, want []", out)
	}
}

func TestSummaryCmd_UnknownCampaign(t *testing.T) {
	events := withEngine(t, sampleWorkspace())

	_, err := runSummary(t, "winter", false, false)
	if err == nil || !strings.Contains(err.Error(), "winter") {
		t.Errorf("err = %v, want campaign not found", err)
	}
	if len(events.types) != 0 {
		t.Errorf("no summary should be recorded on error, got %v", events.types)
	}
}

func TestSummaryCmd_NoEventLog(t *testing.T) {
	withEngine(t, sampleWorkspace())
	Events = nil

	if _, err := runSummary(t, "", false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
