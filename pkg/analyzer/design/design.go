// Package design runs single-pass structural rules over source files:
// magic numbers, parameter counts, boolean flags, nesting depth, fan-out,
// import counts, identifier lengths, and stale variables.
package design

import (
	"context"
	"fmt"
	"time"

	"github.com/facetcode/facet/pkg/analyzer"
	"github.com/facetcode/facet/pkg/analyzer/cohesion"
	"github.com/facetcode/facet/pkg/config"
	"github.com/facetcode/facet/pkg/parser"
)

// Analyzer runs the design rules.
type Analyzer struct {
	cfg            config.DesignConfig
	disabled       map[string]bool
	allowedNumbers map[string]bool
	allowedNames   map[string]bool
	includeTests   bool
	workers        int
}

// Option configures the analyzer.
type Option func(*Analyzer)

// WithWorkers sets the parallel worker count. Zero means 2x NumCPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// WithIncludeTestFiles includes test files in the analysis.
func WithIncludeTestFiles(include bool) Option {
	return func(a *Analyzer) { a.includeTests = include }
}

// New creates a design analyzer for the given rule configuration.
func New(cfg config.DesignConfig, opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg:            cfg,
		disabled:       make(map[string]bool),
		allowedNumbers: make(map[string]bool),
		allowedNames:   make(map[string]bool),
	}
	for _, rule := range cfg.DisabledRules {
		a.disabled[rule] = true
	}
	for _, n := range cfg.AllowedNumbers {
		a.allowedNumbers[n] = true
	}
	for _, n := range cfg.AllowedNames {
		a.allowedNames[n] = true
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the rules over files in parallel and aggregates issues.
// Files that fail to read or parse are skipped.
func (a *Analyzer) Analyze(ctx context.Context, files []string, src analyzer.ContentSource) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Analysis{GeneratedAt: time.Now()}
	tracker := analyzer.TrackerFromContext(ctx)

	results := analyzer.MapFilesN(files, a.workers, func(psr *parser.Parser, path string) ([]Issue, error) {
		if tracker != nil {
			defer tracker.Tick(path)
		}
		if !a.includeTests && cohesion.IsTestFile(path) {
			return nil, fmt.Errorf("test file")
		}
		lang := parser.DetectLanguage(path)
		if lang == parser.LangUnknown {
			return nil, fmt.Errorf("unsupported language")
		}
		content, err := src.Read(path)
		if err != nil {
			return nil, err
		}
		res, err := psr.Parse(content, lang, path)
		if err != nil {
			return nil, err
		}
		defer res.Tree.Close()

		return a.inspect(res), nil
	}, nil)

	for _, issues := range results {
		result.Summary.TotalFiles++
		result.Issues = append(result.Issues, issues...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.SortIssues()
	result.CalculateSummary()
	return result, nil
}

// Close implements analyzer.SourceFileAnalyzer. Parsers are per-worker and
// already released.
func (a *Analyzer) Close() {}

func (a *Analyzer) enabled(rule string) bool {
	return !a.disabled[rule]
}

var _ analyzer.SourceFileAnalyzer[*Analysis] = (*Analyzer)(nil)
