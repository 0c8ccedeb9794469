package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

var (
	summaryCampaign        string
	summaryJSON            bool
	summaryNeedsValidation bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize decision safety across the workspace",
	Long: `Evaluate every entity in the workspace (or the entities backing one
campaign) and print status counts, average research coverage and the
urgency queue.

With --needs-validation only the entities whose decisions are at risk are
listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		subjects, scope, err := selectSubjects(ws, summaryCampaign, nil)
		if err != nil {
			return err
		}

		summary := Aggregator.Aggregate(subjects)
		if err := core.RecordSummary(Events, scope, summary); err != nil {
			Logger.Warn("recording summary event", zap.String("scope", scope), zap.Error(err))
		}

		out := cmd.OutOrStdout()
		if summaryNeedsValidation {
			atRisk := summary.Filter(models.StatusDecisionAtRisk)
			if summaryJSON {
				if atRisk == nil {
					atRisk = []models.EvaluatedEntity{}
				}
				return writeJSON(out, atRisk)
			}
			printEntries(out, fmt.Sprintf("Needs validation (%d)", len(atRisk)), atRisk)
			return nil
		}

		if summaryJSON {
			return writeJSON(out, summary)
		}
		printSummary(out, scope, summary)
		return nil
	},
}

func printSummary(w io.Writer, scope string, s models.AggregateSummary) {
	fmt.Fprintf(w, "Decision summary (%s)\n\n", scope)
	fmt.Fprintf(w, "  %-24s %d\n", "Entities:", s.Total)
	fmt.Fprintf(w, "  %-24s %s\n", "Safe to decide:", styleForStatus(models.StatusSafeToDecide).Render(fmt.Sprint(s.SafeCount)))
	fmt.Fprintf(w, "  %-24s %s\n", "Decision at risk:", styleForStatus(models.StatusDecisionAtRisk).Render(fmt.Sprint(s.AtRiskCount)))
	fmt.Fprintf(w, "  %-24s %s\n", "Blocked:", styleForStatus(models.StatusBlocked).Render(fmt.Sprint(s.BlockedCount)))
	fmt.Fprintf(w, "  %-24s %d%%\n", "Average coverage:", s.AvgCoverage)

	if len(s.CountsByKind) > 0 {
		fmt.Fprintln(w, "\n  Entities by kind:")
		for _, kind := range []models.EntityKind{models.KindBrandAsset, models.KindPersona, models.KindCampaignInput} {
			if n := s.CountsByKind[kind]; n > 0 {
				fmt.Fprintf(w, "    %-20s %d\n", string(kind)+":", n)
			}
		}
	}

	fmt.Fprintln(w)
	printEntries(w, fmt.Sprintf("Urgency queue (%d)", len(s.UrgencyQueue)), s.UrgencyQueue)
}

// printEntries writes a one-line row per evaluated entity.
func printEntries(w io.Writer, title string, entries []models.EvaluatedEntity) {
	fmt.Fprintf(w, "%s\n", title)
	if len(entries) == 0 {
		fmt.Fprintln(w, "  Nothing to show.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "  %-10s %4d%%  %-16s %-24s %s\n",
			statusBadge(e.Verdict.Status), e.Verdict.Coverage, e.Ref.Kind, e.Ref.ID, e.Ref.Label)
	}
}

func init() {
	summaryCmd.Flags().StringVar(&summaryCampaign, "campaign", "", "Only summarize the entities backing this campaign")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output the summary as JSON")
	summaryCmd.Flags().BoolVar(&summaryNeedsValidation, "needs-validation", false, "Only list entities whose decisions are at risk")
	rootCmd.AddCommand(summaryCmd)
}
