package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var methodsJSON bool

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List research methods by strategic priority",
	Long: `List the research methods in the catalog, highest priority first.

The two highest-ranked methods must be completed before a decision can be
considered safe. The catalog can be replaced in .dqeconfig.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Evaluator == nil {
			return fmt.Errorf("evaluation engine not initialized")
		}

		defs := Evaluator.Catalog().Definitions()
		out := cmd.OutOrStdout()
		if methodsJSON {
			return writeJSON(out, defs)
		}

		top := Evaluator.Config().TopMethods
		fmt.Fprintf(out, "%-6s %-20s %s\n", "RANK", "TYPE", "LABEL")
		for i, d := range defs {
			marker := ""
			if i < top {
				marker = "  (required for safe-to-decide)"
			}
			fmt.Fprintf(out, "%-6d %-20s %s%s\n", d.Rank, d.Type, d.Label, marker)
		}
		return nil
	},
}

func init() {
	methodsCmd.Flags().BoolVar(&methodsJSON, "json", false, "Output the catalog as JSON")
	rootCmd.AddCommand(methodsCmd)
}
