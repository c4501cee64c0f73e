// Package analysis orchestrates analyzers, caching, and progress for the
// command layer.
package analysis

import (
	"context"
	"time"

	"github.com/facetcode/facet/internal/cache"
	"github.com/facetcode/facet/pkg/analyzer"
	"github.com/facetcode/facet/pkg/analyzer/cohesion"
	"github.com/facetcode/facet/pkg/analyzer/design"
	"github.com/facetcode/facet/pkg/config"
)

// Service runs analyses with the configured thresholds and cache.
type Service struct {
	config *config.Config
	cache  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache sets the result cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New creates an analysis service. Without options it loads config from
// the standard locations and builds the cache that config describes.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		c, err := cache.New(s.config.Cache.Dir, s.config.Cache.TTL, s.config.Cache.Enabled)
		if err != nil {
			c = cache.Disabled()
		}
		s.cache = c
	}
	return s
}

// CohesionOptions configures a cohesion run. Zero values fall back to the
// service config.
type CohesionOptions struct {
	FunctionThreshold int
	ClassThreshold    int
	MinFunctionLength int
	MinClassLength    int
	IncludeTests      bool
	MaxFileSize       int64
	NoCache           bool
}

func (s *Service) cohesionAnalyzer(opts CohesionOptions) *cohesion.Analyzer {
	cfg := s.config.Cohesion

	functionThreshold := opts.FunctionThreshold
	if functionThreshold <= 0 {
		functionThreshold = cfg.MinSharedVariablePercentage
	}
	classThreshold := opts.ClassThreshold
	if classThreshold <= 0 {
		classThreshold = cfg.MinSharedPropertyPercentage
	}
	minFunc := opts.MinFunctionLength
	if minFunc <= 0 {
		minFunc = cfg.MinFunctionLength
	}
	minClass := opts.MinClassLength
	if minClass <= 0 {
		minClass = cfg.MinClassLength
	}

	analyzerOpts := []cohesion.Option{
		cohesion.WithFunctionThreshold(functionThreshold),
		cohesion.WithClassThreshold(classThreshold),
		cohesion.WithMinFunctionLength(minFunc),
		cohesion.WithMinClassLength(minClass),
		cohesion.WithIncludeTestFiles(opts.IncludeTests),
	}
	if opts.MaxFileSize > 0 {
		analyzerOpts = append(analyzerOpts, cohesion.WithMaxFileSize(opts.MaxFileSize))
	}
	return cohesion.New(analyzerOpts...)
}

// AnalyzeCohesion runs cohesion analysis over files, reusing cached
// per-file results when the file content is unchanged.
func (s *Service) AnalyzeCohesion(ctx context.Context, files []string, src analyzer.ContentSource, opts CohesionOptions) (*cohesion.Analysis, error) {
	a := s.cohesionAnalyzer(opts)
	defer a.Close()

	c := s.cache
	if opts.NoCache {
		c = cache.Disabled()
	}
	// Cache keys incorporate the thresholds: a run with different limits
	// must not reuse findings computed under the old ones.
	kind := cohesionCacheKind(a)

	result := &cohesion.Analysis{GeneratedAt: time.Now()}
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

		if !opts.IncludeTests && cohesion.IsTestFile(path) {
			continue
		}
		content, err := src.Read(path)
		if err != nil {
			continue
		}
		if opts.MaxFileSize > 0 && int64(len(content)) > opts.MaxFileSize {
			continue
		}

		hash := cache.HashBytes(content)
		var fr cohesion.FileResult
		if !c.Get(kind, path, hash, &fr) {
			got, err := a.AnalyzeContent(path, content)
			if err != nil {
				continue
			}
			fr = *got
			_ = c.Set(kind, path, hash, fr)
		}

		result.Summary.TotalFiles++
		result.Summary.UnitsAnalyzed += fr.UnitsAnalyzed
		result.Findings = append(result.Findings, fr.Findings...)
	}

	result.SortFindings()
	result.CalculateSummary()
	return result, nil
}

func cohesionCacheKind(a *cohesion.Analyzer) string {
	return "cohesion|" + a.Fingerprint()
}

// DesignOptions configures a design run.
type DesignOptions struct {
	IncludeTests bool
	Workers      int
}

// AnalyzeDesign runs the design rules over files in parallel. Design runs
// are not cached: the single-pass rules are cheap relative to hashing and
// storing every file's issues.
func (s *Service) AnalyzeDesign(ctx context.Context, files []string, src analyzer.ContentSource, opts DesignOptions) (*design.Analysis, error) {
	analyzerOpts := []design.Option{
		design.WithIncludeTestFiles(opts.IncludeTests),
	}
	if opts.Workers > 0 {
		analyzerOpts = append(analyzerOpts, design.WithWorkers(opts.Workers))
	}

	a := design.New(s.config.Design, analyzerOpts...)
	defer a.Close()

	return a.Analyze(ctx, files, src)
}

// ClearCache removes all cached analysis results.
func (s *Service) ClearCache() error {
	return s.cache.Clear()
}

// CacheStats reports what the cache currently holds.
func (s *Service) CacheStats() (*cache.Stats, error) {
	return s.cache.GetStats()
}
