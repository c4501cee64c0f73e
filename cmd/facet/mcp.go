package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/facetcode/facet/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP (Model Context Protocol) server for LLM tool integration",
	Long: `Starts an MCP server over stdio transport that exposes facet's analyzers
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "facet": {
        "command": "facet",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_cohesion   Fragmented functions and classes
  - analyze_design     Magic numbers, deep nesting, fan-out, and more`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	server := mcpserver.NewServer(version)
	return server.Run(context.Background())
}
