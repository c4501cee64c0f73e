// Package mcpserver exposes facet analyses as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the facet analysis tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all facet tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "facet",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_cohesion",
		Description: describeCohesion(),
	}, handleAnalyzeCohesion)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_design",
		Description: describeDesign(),
	}, handleAnalyzeDesign)
}

func describeCohesion() string {
	return `Detect low-cohesion functions and classes in JavaScript, TypeScript, Python, and Java source.

A function is fragmented when its control blocks split into groups that share no variables; a class is fragmented when its methods split into groups that share no fields and never call each other. Each finding lists the disconnected groups, the identifiers each group touches, and the average overlap between blocks.

Use this to find units that are doing more than one job and are candidates for extraction.`
}

func describeDesign() string {
	return `Run design-quality rules over JavaScript, TypeScript, Python, and Java source.

Rules: magic-number, parameter-count, boolean-flag, nesting-depth, fan-out, import-count, identifier-length, and stale-variable. Each issue carries a rule id, severity, message, and location.

Use this for a quick design review of a directory or changeset.`
}
