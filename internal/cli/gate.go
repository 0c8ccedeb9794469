package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// ErrWarningNotAcknowledged is returned when a gated action is at risk and
// the user has not acknowledged the warning.
var ErrWarningNotAcknowledged = errors.New("decision is at risk; acknowledge with --override <reason> or --interactive")

var (
	gateCampaign    string
	gateEntities    []string
	gateOverride    string
	gateInteractive bool
	gateJSON        bool
)

var gateCmd = &cobra.Command{
	Use:   "gate <action>",
	Short: "Check whether a strategic action may proceed",
	Long: `Gate a strategic action (e.g. generate-campaign) on the research behind
the entities it depends on.

The action proceeds when every entity is safe to decide on, warns when any
entity is at risk, and is blocked when any entity is blocked. A warning can
be acknowledged with --override <reason> or interactively with
--interactive; a block cannot be overridden.

The command exits non-zero unless the action is allowed to proceed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		if Gatekeeper == nil {
			return fmt.Errorf("gatekeeper not initialized")
		}
		if gateCampaign == "" && len(gateEntities) == 0 {
			return fmt.Errorf("one of --campaign or --entity is required")
		}
		if gateOverride != "" && gateInteractive {
			return fmt.Errorf("--override and --interactive are mutually exclusive")
		}

		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		subjects, _, err := selectSubjects(ws, gateCampaign, gateEntities)
		if err != nil {
			return err
		}

		action := args[0]
		decision := Gatekeeper.Guard(action, subjects)
		decision, gateErr := acknowledge(decision)

		out := cmd.OutOrStdout()
		if gateJSON {
			if err := writeJSON(out, decision); err != nil {
				return err
			}
		} else {
			printDecision(out, decision)
		}
		return gateErr
	},
}

// acknowledge applies --override or the interactive prompt to a decision
// and returns an error unless the action may proceed.
func acknowledge(d core.GateDecision) (core.GateDecision, error) {
	switch d.Outcome {
	case models.GateProceed:
		return d, nil
	case models.GateBlock:
		if gateOverride != "" {
			_, err := Gatekeeper.Override(d, gateOverride)
			return d, err
		}
		return d, fmt.Errorf("%s: %w", d.Action, core.ErrGateBlocked)
	}

	reason := gateOverride
	if reason == "" && gateInteractive {
		typed, ok, err := acknowledgeWarning(d)
		if err != nil {
			return d, err
		}
		if !ok {
			return d, fmt.Errorf("%s: %w", d.Action, ErrWarningNotAcknowledged)
		}
		reason = typed
	}
	if reason == "" {
		return d, fmt.Errorf("%s: %w", d.Action, ErrWarningNotAcknowledged)
	}
	return Gatekeeper.Override(d, reason)
}

func printDecision(w io.Writer, d core.GateDecision) {
	fmt.Fprintf(w, "%s %s\n\n", outcomeBadge(d.Outcome), d.Action)
	for _, e := range d.Entities {
		marker := " "
		if e.Ref == d.Deciding {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %-10s %4d%%  %-16s %s\n", marker, statusBadge(e.Verdict.Status), e.Verdict.Coverage, e.Ref.Kind, e.Ref.ID)
	}
	if len(d.Entities) == 0 {
		fmt.Fprintln(w, "  No entities back this action.")
	}

	fmt.Fprintf(w, "\n  %s\n", d.Verdict.Recommendation)
	if len(d.Verdict.NextSteps) > 0 {
		fmt.Fprintln(w, "\n  Next steps:")
		for i, step := range d.Verdict.NextSteps {
			fmt.Fprintf(w, "    %d. %s\n", i+1, step)
		}
	}
	if d.Acknowledged {
		fmt.Fprintf(w, "\n  Warning acknowledged: %s\n", d.OverrideReason)
	}
}

func init() {
	gateCmd.Flags().StringVar(&gateCampaign, "campaign", "", "Gate on the entities backing this campaign")
	gateCmd.Flags().StringSliceVar(&gateEntities, "entity", nil, "Gate on these entity IDs (repeatable)")
	gateCmd.Flags().StringVar(&gateOverride, "override", "", "Acknowledge a risk warning with this reason")
	gateCmd.Flags().BoolVar(&gateInteractive, "interactive", false, "Acknowledge a risk warning interactively")
	gateCmd.Flags().BoolVar(&gateJSON, "json", false, "Output the gate decision as JSON")
	rootCmd.AddCommand(gateCmd)
}
