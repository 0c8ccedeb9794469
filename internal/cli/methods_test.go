package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

func TestMethodsCmd_Table(t *testing.T) {
	withEngine(t, nil)
	var out bytes.Buffer
	methodsCmd.SetOut(&out)
	defer methodsCmd.SetOut(nil)

	if err := methodsCmd.RunE(methodsCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header and 4 methods, got:\n%s", out.String())
	}
	for i, want := range []struct {
		name     string
		required bool
	}{{"workshop", true}, {"interviews", true}, {"questionnaire", false}, {"ai-exploration", false}} {
		line := lines[i+1]
		if !strings.Contains(line, want.name) {
			t.Errorf("line %d = %q, want %s", i+1, line, want.name)
		}
		if got := strings.Contains(line, "required"); got != want.required {
			t.Errorf("line %d required = %v, want %v", i+1, got, want.required)
		}
	}
}

func TestMethodsCmd_JSON(t *testing.T) {
	withEngine(t, nil)
	origJSON := methodsJSON
	defer func() { methodsJSON = origJSON }()
	methodsJSON = true

	var out bytes.Buffer
	methodsCmd.SetOut(&out)
	defer methodsCmd.SetOut(nil)

	if err := methodsCmd.RunE(methodsCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var defs []models.MethodDefinition
	if err := json.Unmarshal(out.Bytes(), &defs); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(defs) != 4 || defs[0].Rank != 1 {
		t.Errorf("unexpected definitions: %+v", defs)
	}
}

func TestMethodsCmd_NotInitialized(t *testing.T) {
	withEngine(t, nil)
	Evaluator = nil

	if err := methodsCmd.RunE(methodsCmd, nil); err == nil {
		t.Fatal("expected error when Evaluator is nil")
	}
}
