package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

var evaluateJSON bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <entity-id>",
	Short: "Evaluate whether it is safe to decide on one entity",
	Long: `Evaluate the research behind one brand asset, persona or campaign input.

Prints the decision status, research coverage, the top-priority methods
that are still missing, and the next steps to make the decision safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}

		subject, ok := ws.FindSubject(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrEntityNotFound, args[0])
		}

		entry := models.EvaluatedEntity{Ref: subject.Ref(), Verdict: Evaluator.Evaluate(subject)}
		out := cmd.OutOrStdout()
		if evaluateJSON {
			return writeJSON(out, entry)
		}

		printVerdict(out, entry)
		printMethods(out, subject.ResearchMethods())
		return nil
	},
}

// printVerdict writes the full verdict for one entity.
func printVerdict(w io.Writer, e models.EvaluatedEntity) {
	v := e.Verdict
	fmt.Fprintf(w, "%s  %s (%s %s)\n\n", statusBadge(v.Status), e.Ref.Label, e.Ref.Kind, e.Ref.ID)
	fmt.Fprintf(w, "  %-22s %s\n", "Status:", v.Status)
	fmt.Fprintf(w, "  %-22s %d%%\n", "Research coverage:", v.Coverage)
	fmt.Fprintf(w, "  %-22s %s\n", "Completed methods:", methodList(v.CompletedMethods))
	if len(v.MissingTopMethods) > 0 {
		fmt.Fprintf(w, "  %-22s %s\n", "Missing top methods:", methodList(v.MissingTopMethods))
	}

	fmt.Fprintf(w, "\n  %s\n", v.Recommendation)
	fmt.Fprintf(w, "  Risk: %s\n", v.Risk)

	if len(v.NextSteps) > 0 {
		fmt.Fprintln(w, "\n  Next steps:")
		for i, step := range v.NextSteps {
			fmt.Fprintf(w, "    %d. %s\n", i+1, step)
		}
	}
}

// printMethods writes the research methods attached to an entity with their
// display progress.
func printMethods(w io.Writer, methods []models.ResearchMethod) {
	if len(methods) == 0 {
		return
	}
	fmt.Fprintln(w, "\n  Research methods:")
	for _, m := range methods {
		progress := ""
		if m.Progress != nil {
			progress = fmt.Sprintf("%3d%%", *m.Progress)
		}
		fmt.Fprintf(w, "    %-20s %-12s %s\n", labelFor(m.Type), m.Status, progress)
	}
}

func labelFor(t models.MethodType) string {
	if Evaluator == nil {
		return string(t)
	}
	return Evaluator.Catalog().LabelFor(t)
}

func methodList(types []models.MethodType) string {
	if len(types) == 0 {
		return "none"
	}
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = labelFor(t)
	}
	return strings.Join(labels, ", ")
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "Output the verdict as JSON")
	rootCmd.AddCommand(evaluateCmd)
}
