// Package cohesion detects functions and classes whose internals split
// into disconnected groups of blocks. Blocks that share identifiers above
// a threshold are linked; when the resulting graph has more than one
// connected component, the unit is doing more than one job.
package cohesion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/facetcode/facet/pkg/analyzer"
	"github.com/facetcode/facet/pkg/parser"
)

const (
	// DefaultFunctionThreshold is the minimum shared-variable percentage
	// for two control blocks to count as related.
	DefaultFunctionThreshold = 30
	// DefaultClassThreshold is the minimum shared-member percentage for
	// two methods to count as related.
	DefaultClassThreshold = 40
	// DefaultMinFunctionLength is the smallest function span analyzed.
	DefaultMinFunctionLength = 10
	// DefaultMinClassLength is the smallest class span analyzed.
	DefaultMinClassLength = 10
	// DefaultMaxFileSize caps analyzed files at 1MB.
	DefaultMaxFileSize = 1 << 20
)

// Analyzer detects low-cohesion functions and classes.
type Analyzer struct {
	parser *parser.Parser

	functionThreshold int
	classThreshold    int
	minFunctionLength int
	minClassLength    int
	includeTests      bool
	maxFileSize       int64
}

// Option configures the analyzer.
type Option func(*Analyzer)

// WithFunctionThreshold sets the shared-variable percentage for functions.
func WithFunctionThreshold(pct int) Option {
	return func(a *Analyzer) { a.functionThreshold = pct }
}

// WithClassThreshold sets the shared-member percentage for classes.
func WithClassThreshold(pct int) Option {
	return func(a *Analyzer) { a.classThreshold = pct }
}

// WithMinFunctionLength sets the minimum function span in lines.
func WithMinFunctionLength(lines int) Option {
	return func(a *Analyzer) { a.minFunctionLength = lines }
}

// WithMinClassLength sets the minimum class span in lines.
func WithMinClassLength(lines int) Option {
	return func(a *Analyzer) { a.minClassLength = lines }
}

// WithIncludeTestFiles includes test files in the analysis.
func WithIncludeTestFiles(include bool) Option {
	return func(a *Analyzer) { a.includeTests = include }
}

// WithMaxFileSize sets the per-file size cap in bytes. Zero disables it.
func WithMaxFileSize(bytes int64) Option {
	return func(a *Analyzer) { a.maxFileSize = bytes }
}

// New creates a cohesion analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:            parser.New(),
		functionThreshold: DefaultFunctionThreshold,
		classThreshold:    DefaultClassThreshold,
		minFunctionLength: DefaultMinFunctionLength,
		minClassLength:    DefaultMinClassLength,
		maxFileSize:       DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FileResult holds the analysis of a single file.
type FileResult struct {
	Path          string    `json:"path"`
	UnitsAnalyzed int       `json:"units_analyzed"`
	Findings      []Finding `json:"findings"`
}

// Analyze processes files sequentially and aggregates findings. Files that
// fail to read or parse are skipped rather than failing the run.
func (a *Analyzer) Analyze(ctx context.Context, files []string, src analyzer.ContentSource) (*Analysis, error) {
	result := &Analysis{GeneratedAt: time.Now()}
	tracker := analyzer.TrackerFromContext(ctx)

	for _, path := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if tracker != nil {
			tracker.Tick(path)
		}

		if !a.includeTests && IsTestFile(path) {
			continue
		}
		content, err := src.Read(path)
		if err != nil {
			continue
		}
		if a.maxFileSize > 0 && int64(len(content)) > a.maxFileSize {
			continue
		}

		fr, err := a.AnalyzeContent(path, content)
		if err != nil {
			continue
		}
		result.Summary.TotalFiles++
		result.Summary.UnitsAnalyzed += fr.UnitsAnalyzed
		result.Findings = append(result.Findings, fr.Findings...)
	}

	result.SortFindings()
	result.CalculateSummary()
	return result, nil
}

// AnalyzeFile reads and analyzes a single file from the source.
func (a *Analyzer) AnalyzeFile(path string, src analyzer.ContentSource) (*FileResult, error) {
	content, err := src.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return a.AnalyzeContent(path, content)
}

// AnalyzeContent analyzes in-memory file content.
func (a *Analyzer) AnalyzeContent(path string, content []byte) (*FileResult, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return nil, fmt.Errorf("unsupported language for file: %s", path)
	}

	res, err := a.parser.Parse(content, lang, path)
	if err != nil {
		return nil, err
	}
	defer res.Tree.Close()

	state := NewTraversalState()
	fr := &FileResult{Path: path}
	runTraversal(res, state, func(u *Unit) {
		fr.UnitsAnalyzed++
		if f := a.finalize(path, u, state); f != nil {
			fr.Findings = append(fr.Findings, *f)
		}
	})
	return fr, nil
}

// finalize gates a completed unit and turns a fragmented one into a finding.
func (a *Analyzer) finalize(path string, u *Unit, state *TraversalState) *Finding {
	threshold := a.functionThreshold
	minLength := a.minFunctionLength
	if u.Kind == UnitClass {
		threshold = a.classThreshold
		minLength = a.minClassLength
	}
	if u.Span() < minLength || len(u.Blocks) < 2 {
		return nil
	}

	g := buildOverlapGraph(u, threshold, state.names)
	comps := g.components()
	if len(comps) <= 1 {
		return nil
	}

	name := u.Name
	if name == "" {
		name = anonymousName
	}
	finding := &Finding{
		Path:              path,
		UnitKind:          u.Kind,
		UnitName:          name,
		StartLine:         u.StartLine,
		EndLine:           u.EndLine,
		ComponentCount:    len(comps),
		AvgOverlapPercent: round1(g.averageScore()),
		Threshold:         threshold,
		Fingerprint:       fingerprint(path, u.Kind, name, u.StartLine),
	}

	for _, comp := range comps {
		c := Component{}
		// A component's identifiers are everything its blocks touch,
		// not just what connected pairs have in common.
		used := roaring.New()
		for _, idx := range comp {
			b := u.Blocks[idx]
			label := b.Label
			if label == "" {
				label = fmt.Sprintf("block %d", idx+1)
			}
			c.MemberNames = append(c.MemberNames, label)
			c.BlockTypeTags = append(c.BlockTypeTags, b.Type)
			c.LineRanges = append(c.LineRanges, fmt.Sprintf("%d-%d", b.StartLine, b.EndLine))
			used.Or(b.signal(u.Kind))
		}
		c.SharedIdentifiers = state.names.namesOf(used)
		finding.Components = append(finding.Components, c)
	}
	return finding
}

// Fingerprint identifies the analyzer's effective configuration, so
// cached results are keyed to the thresholds that produced them.
func (a *Analyzer) Fingerprint() string {
	h := xxhash.New()
	fmt.Fprintf(h, "%d|%d|%d|%d|%t|%d",
		a.functionThreshold, a.classThreshold,
		a.minFunctionLength, a.minClassLength,
		a.includeTests, a.maxFileSize)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Close releases parser resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

// IsTestFile reports whether a path looks like a test file by the naming
// conventions of the supported languages.
func IsTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	if strings.HasPrefix(stem, "test_") || strings.HasSuffix(stem, "_test") {
		return true
	}
	if ext == ".java" && (strings.HasPrefix(stem, "test") || strings.HasSuffix(stem, "test") || strings.HasSuffix(stem, "tests")) {
		return true
	}
	return false
}

var _ analyzer.SourceFileAnalyzer[*Analysis] = (*Analyzer)(nil)
