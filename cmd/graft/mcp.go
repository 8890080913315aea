package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpAdapter "github.com/aretw0/graft/pkg/adapters/mcp"
	"github.com/aretw0/graft/pkg/nodehost"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the node host as a Model Context Protocol (MCP) server",
	Long: `Starts a graft node host and exposes it to AI agents as MCP tools:
create, attach, detach and release nodes, and read the event journal.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Logs go to stderr.
- sse: Uses Server-Sent Events over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		hostOpts := []nodehost.Option{nodehost.WithLogger(logger)}
		if journal := openJournal(cmd, logger); journal != nil {
			defer journal.Close()
			hostOpts = append(hostOpts, nodehost.WithJournal(journal))
		}
		srv := mcpAdapter.NewServer(nodehost.New("mcp", hostOpts...), mcpAdapter.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("starting graft MCP server", "transport", transport)
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting graft MCP server", "transport", transport, "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			logger.Info("MCP server stopped")
			return nil
		default:
			return fmt.Errorf("unknown transport %q: supported are stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	addJournalFlags(mcpCmd)
}
