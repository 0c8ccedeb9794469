package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

var (
	queueCampaign string
	queueStatus   string
	queueLimit    int
	queueJSON     bool
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List entities that need research, most urgent first",
	Long: `List the entities that are not safe to decide on, blocked first and
then by ascending research coverage.

Use --status to show only blocked or only at-risk entities and --limit to
cap the list.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		if queueLimit < 0 {
			return fmt.Errorf("--limit must be non-negative, got %d", queueLimit)
		}
		var status models.DecisionStatus
		if queueStatus != "" {
			parsed, err := core.ParseDecisionStatus(queueStatus)
			if err != nil {
				return fmt.Errorf("parsing --status: %w", err)
			}
			status = parsed
		}

		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		subjects, _, err := selectSubjects(ws, queueCampaign, nil)
		if err != nil {
			return err
		}

		queue := filterQueue(Aggregator.Aggregate(subjects).UrgencyQueue, status, queueLimit)

		out := cmd.OutOrStdout()
		if queueJSON {
			return writeJSON(out, queue)
		}
		printEntries(out, fmt.Sprintf("Urgency queue (%d)", len(queue)), queue)
		return nil
	},
}

// filterQueue keeps entries with the given status (all when empty) and
// truncates to limit (no limit when 0).
func filterQueue(queue []models.EvaluatedEntity, status models.DecisionStatus, limit int) []models.EvaluatedEntity {
	out := make([]models.EvaluatedEntity, 0, len(queue))
	for _, e := range queue {
		if status == "" || e.Verdict.Status == status {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func init() {
	queueCmd.Flags().StringVar(&queueCampaign, "campaign", "", "Only consider the entities backing this campaign")
	queueCmd.Flags().StringVar(&queueStatus, "status", "", "Only show entities with this status (decision-at-risk or blocked)")
	queueCmd.Flags().IntVar(&queueLimit, "limit", 0, "Maximum number of entries (0 for no limit)")
	queueCmd.Flags().BoolVar(&queueJSON, "json", false, "Output the queue as JSON")
	rootCmd.AddCommand(queueCmd)
}
