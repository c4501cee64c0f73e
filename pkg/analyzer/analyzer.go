package analyzer

import "context"

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// SourceFileAnalyzer is the interface analyzers implement to process a
// collection of files from a ContentSource with context support.
type SourceFileAnalyzer[T any] interface {
	// Analyze processes files and returns the analysis result.
	// The context can be used for cancellation and progress reporting.
	Analyze(ctx context.Context, files []string, src ContentSource) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
