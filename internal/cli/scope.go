package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// workspaceScope is the name recorded for summaries over every entity.
const workspaceScope = "workspace"

func requireEngine() error {
	if Loader == nil || Evaluator == nil || Aggregator == nil {
		return fmt.Errorf("evaluation engine not initialized")
	}
	return nil
}

// loadWorkspace loads the workspace under the command's context. Commands
// invoked directly (e.g. from tests) have no context and use Background.
func loadWorkspace(cmd *cobra.Command) (*models.Workspace, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ws, err := Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading workspace from %s: %w", Loader.Dir(), err)
	}
	return ws, nil
}

// selectSubjects returns the subjects for a campaign, the given entity IDs,
// or the whole workspace when both are empty, with the scope name used in
// summary events.
func selectSubjects(ws *models.Workspace, campaignID string, entityIDs []string) ([]models.Subject, string, error) {
	switch {
	case campaignID != "" && len(entityIDs) > 0:
		return nil, "", fmt.Errorf("--campaign and --entity are mutually exclusive")
	case campaignID != "":
		subjects, err := core.SelectCampaign(ws, campaignID)
		if err != nil {
			return nil, "", err
		}
		return subjects, campaignID, nil
	case len(entityIDs) > 0:
		subjects, err := core.SelectEntities(ws, entityIDs)
		if err != nil {
			return nil, "", err
		}
		return subjects, "selection", nil
	default:
		return ws.Subjects(), workspaceScope, nil
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting output as JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
