package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"interpreteval/internal/logging"
	mcpserver "interpreteval/internal/mcp"
	"interpreteval/internal/store"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the analysis
operations as tools: list_tasks, analyze_system, get_report, list_runs.

The server monitors for parent process death. When the MCP host
disconnects, the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer st.Close()

	srv := mcpserver.NewServer(mcpserver.Options{
		OutputDir: cfg.OutputDir,
		Alpha:     cfg.Alpha,
		HubURL:    cfg.HubURL,
		CacheDir:  cfg.CacheDir,
		Store:     st,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting interpret-eval MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
