package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

var verbose bool

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "dqe",
	Short: "Decision Quality Evaluation Engine",
	Long: `dqe (Decision Quality Evaluation Engine) tells you whether a strategic
decision is backed by enough research to be made safely.

It reads brand assets, personas and campaigns from the workspace, scores
each entity's research coverage, and gates strategic actions such as
campaign generation: proceed when research is sufficient, warn when it is
at risk, block when it is missing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			LogLevel.SetLevel(zap.DebugLevel)
		}
		Logger.Debug("running command", zap.String("command", cmd.CommandPath()))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dqe %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
