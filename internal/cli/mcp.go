package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/decision-quality/internal/logging"
	dqemcp "github.com/valter-silva-au/decision-quality/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the dqe MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dqe MCP server on stdio",
	Long: `Start the dqe MCP server on stdio transport.

The server exposes the decision-quality engine as MCP tools that AI
assistants can call: evaluate_entity, summarize, urgency_queue,
decide_gate, list_methods, get_metrics, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		if Gatekeeper == nil {
			return fmt.Errorf("gatekeeper not initialized")
		}

		srv := dqemcp.NewServer(dqemcp.Services{
			Loader:     Loader,
			Evaluator:  Evaluator,
			Aggregator: Aggregator,
			Gatekeeper: Gatekeeper,
			Events:     Events,
			Metrics:    MetricsCalc,
			Alerts:     AlertEngine,
			Logger:     logging.Component(Logger, "mcp"),
		}, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
