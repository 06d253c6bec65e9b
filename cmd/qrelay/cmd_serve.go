package main

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"qrelay/internal/keywords"
	"qrelay/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP keyword server on stdio",
	Long: "Serves the reporting operations as MCP tools over stdio, for test\n" +
		"runners and agent harnesses. The server exits when the parent process\n" +
		"dies or the connection closes.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	srv := keywords.NewServer(mgr)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	keywords.WatchStdin(ctx, cancel)

	logging.New("serve").Info("qrelay MCP server listening on stdio")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
