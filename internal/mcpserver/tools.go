package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/facetcode/facet/internal/output"
	"github.com/facetcode/facet/internal/service/analysis"
	scannerSvc "github.com/facetcode/facet/internal/service/scanner"
	"github.com/facetcode/facet/pkg/source"
)

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// CohesionInput adds cohesion-specific options.
type CohesionInput struct {
	AnalyzeInput
	FunctionThreshold int  `json:"function_threshold,omitempty" jsonschema:"Minimum shared-variable percentage for function blocks. Default 30."`
	ClassThreshold    int  `json:"class_threshold,omitempty" jsonschema:"Minimum shared-member percentage for class methods. Default 40."`
	IncludeTests      bool `json:"include_tests,omitempty" jsonschema:"Include test files in analysis."`
}

// DesignInput adds design-rule options.
type DesignInput struct {
	AnalyzeInput
	IncludeTests bool `json:"include_tests,omitempty" jsonschema:"Include test files in analysis."`
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return "```\n" + string(out) + "\n```", nil
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func handleAnalyzeCohesion(ctx context.Context, req *mcp.CallToolRequest, input CohesionInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	scanner := scannerSvc.New()
	scanResult, err := scanner.ScanPaths(paths)
	if err != nil {
		return toolError(err.Error())
	}
	if len(scanResult.Files) == 0 {
		return toolError("no source files found")
	}

	svc := analysis.New()
	result, err := svc.AnalyzeCohesion(ctx, scanResult.Files, source.NewFilesystem(), analysis.CohesionOptions{
		FunctionThreshold: input.FunctionThreshold,
		ClassThreshold:    input.ClassThreshold,
		IncludeTests:      input.IncludeTests,
	})
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(result, format)
}

func handleAnalyzeDesign(ctx context.Context, req *mcp.CallToolRequest, input DesignInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	scanner := scannerSvc.New()
	scanResult, err := scanner.ScanPaths(paths)
	if err != nil {
		return toolError(err.Error())
	}
	if len(scanResult.Files) == 0 {
		return toolError("no source files found")
	}

	svc := analysis.New()
	result, err := svc.AnalyzeDesign(ctx, scanResult.Files, source.NewFilesystem(), analysis.DesignOptions{
		IncludeTests: input.IncludeTests,
	})
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(result, format)
}
