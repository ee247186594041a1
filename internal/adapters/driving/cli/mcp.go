package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
stored PDFs, read their extracted text and ask questions about them.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead.

Examples:
  # Stdio mode (for desktop assistants)
  folio mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  folio mcp serve --port 8080 --host 0.0.0.0

Assistant configuration:
  {
    "mcpServers": {
      "folio": {
        "command": "/path/to/folio",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

var (
	mcpPort int
	mcpHost string
)

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP bind host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("port %d out of range", mcpPort)
	}

	ports := &mcp.Ports{
		Search:   searchService,
		Document: documentService,
	}
	if chatService != nil && chatService.Available() {
		ports.Chat = chatService
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if mcpPort == 0 {
		return server.Run(ctx)
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	if ports.Chat == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "ask tool disabled: no LLM provider configured")
	}
	return server.RunHTTP(ctx, addr)
}
