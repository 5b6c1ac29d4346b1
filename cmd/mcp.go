package cmd

import (
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the project database to coding agents over MCP (stdio)",
	Long: `Runs a Model Context Protocol server on stdin/stdout. Agents can list
projects, read schedules, add tasks and propose or remove dependencies.
Proposals go through the same cycle gate as "critpath dep add", so agents
working in parallel cannot jointly create a cycle.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	e.printer.Info("critpath MCP server on stdio, database " + e.cfg.DBPath)
	err = mcpserver.NewServer(st, e.events).Run(ctx, &mcp.StdioTransport{})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
