package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display gate and evaluation metrics",
	Long: `Display aggregated metrics derived from the event log.

Metrics include gate outcomes (proceed, warn, block), warning overrides,
outcomes per action, and the most recent average research coverage.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (event log may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			return writeJSON(out, metrics)
		}

		// Table format.
		fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Gate decisions:", metrics.GateDecisions)
		fmt.Fprintf(out, "  %-24s %d\n", "Proceeded:", metrics.Proceeded)
		fmt.Fprintf(out, "  %-24s %d\n", "Warned:", metrics.Warned)
		fmt.Fprintf(out, "  %-24s %d\n", "Blocked:", metrics.Blocked)
		fmt.Fprintf(out, "  %-24s %d (%.0f%% of warnings)\n", "Warnings overridden:", metrics.Overrides, metrics.OverrideRate()*100)
		fmt.Fprintf(out, "  %-24s %d\n", "Workspace evaluations:", metrics.Evaluations)
		if metrics.LastAvgCoverage != nil {
			fmt.Fprintf(out, "  %-24s %d%%\n", "Last average coverage:", *metrics.LastAvgCoverage)
		}

		if len(metrics.DecisionsByAction) > 0 {
			fmt.Fprintln(out, "\n  Decisions by action:")
			actions := make([]string, 0, len(metrics.DecisionsByAction))
			for action := range metrics.DecisionsByAction {
				actions = append(actions, action)
			}
			sort.Strings(actions)
			for _, action := range actions {
				fmt.Fprintf(out, "    %-28s %d (%d blocked)\n", action+":", metrics.DecisionsByAction[action], metrics.BlockedByAction[action])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
