package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/facetcode/facet/internal/output"
	"github.com/facetcode/facet/internal/progress"
	"github.com/facetcode/facet/internal/service/analysis"
	scannerSvc "github.com/facetcode/facet/internal/service/scanner"
	"github.com/facetcode/facet/pkg/analyzer"
	"github.com/facetcode/facet/pkg/config"
	"github.com/facetcode/facet/pkg/source"
	"github.com/facetcode/facet/pkg/watch"
)

var cohesionCmd = &cobra.Command{
	Use:   "cohesion [path...]",
	Short: "Find functions and classes whose blocks split into unrelated groups",
	Long: `Analyzes each function and class for cohesion. Control blocks that share
variables (or methods that share fields) are linked; when the blocks of a
unit fall apart into more than one group, the unit is flagged with the
groups and the identifiers each group touches.`,
	RunE: runCohesion,
}

func init() {
	cohesionCmd.Flags().Int("threshold", 0, "Minimum shared-variable percentage for function blocks (default from config)")
	cohesionCmd.Flags().Int("class-threshold", 0, "Minimum shared-member percentage for class methods (default from config)")
	cohesionCmd.Flags().Int("min-function-length", 0, "Skip functions shorter than this many lines (default from config)")
	cohesionCmd.Flags().Int("min-class-length", 0, "Skip classes shorter than this many lines (default from config)")
	cohesionCmd.Flags().Bool("include-tests", false, "Include test files in analysis")
	cohesionCmd.Flags().Int("top", 0, "Show only the N most fragmented units")
	cohesionCmd.Flags().String("rev", "", "Analyze a git revision instead of the working tree")
	cohesionCmd.Flags().Bool("no-cache", false, "Disable the per-file result cache")
	cohesionCmd.Flags().Bool("watch", false, "Re-analyze files as they change")

	rootCmd.AddCommand(cohesionCmd)
}

func runCohesion(cmd *cobra.Command, args []string) error {
	paths := getPaths(args)
	threshold, _ := cmd.Flags().GetInt("threshold")
	classThreshold, _ := cmd.Flags().GetInt("class-threshold")
	minFuncLen, _ := cmd.Flags().GetInt("min-function-length")
	minClassLen, _ := cmd.Flags().GetInt("min-class-length")
	includeTests, _ := cmd.Flags().GetBool("include-tests")
	topN, _ := cmd.Flags().GetInt("top")
	rev, _ := cmd.Flags().GetString("rev")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	watchMode, _ := cmd.Flags().GetBool("watch")

	if watchMode && rev != "" {
		return fmt.Errorf("--watch cannot be combined with --rev")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths, cleanup, err := resolvePaths(context.Background(), paths)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := analysis.CohesionOptions{
		FunctionThreshold: threshold,
		ClassThreshold:    classThreshold,
		MinFunctionLength: minFuncLen,
		MinClassLength:    minClassLen,
		IncludeTests:      includeTests,
		NoCache:           noCache,
	}

	scanSvc := scannerSvc.New(scannerSvc.WithConfig(cfg))

	var files []string
	var src analyzer.ContentSource
	if rev != "" {
		scanResult, tree, err := scanSvc.ScanRevision(paths[0], rev)
		if err != nil {
			return err
		}
		files = scanResult.Files
		src = source.NewTree(tree)
	} else {
		scanResult, err := scanSvc.ScanPaths(paths)
		if err != nil {
			return err
		}
		files = scanResult.Files
		src = source.NewFilesystem()
	}

	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	bar := progress.NewBar("Analyzing cohesion", len(files))
	tracker := analyzer.NewTracker(func(current, total int, path string) {
		bar.Tick()
	})
	tracker.Add(len(files))
	ctx := analyzer.WithTracker(context.Background(), tracker)

	svc := analysis.New(analysis.WithConfig(cfg))
	result, err := svc.AnalyzeCohesion(ctx, files, src, opts)
	bar.Finish()
	if err != nil {
		return fmt.Errorf("cohesion analysis failed: %w", err)
	}

	if topN > 0 && len(result.Findings) > topN {
		result.Findings = result.Findings[:topN]
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), !noColor && cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.CohesionReport(result)); err != nil {
		return err
	}

	if watchMode {
		return watchCohesion(cmd, paths[0], cfg, svc, opts)
	}
	return nil
}

// watchCohesion re-analyzes individual files as they change until
// interrupted.
func watchCohesion(cmd *cobra.Command, root string, cfg *config.Config, svc *analysis.Service, opts analysis.CohesionOptions) error {
	watcher, err := watch.NewWatcher(root, cfg, 500*time.Millisecond)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	watcher.SetCallback(func(path string) {
		result, err := svc.AnalyzeCohesion(context.Background(), []string{path}, source.NewFilesystem(), opts)
		if err != nil {
			color.Red("analysis failed: %v", err)
			return
		}

		formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), "", !noColor && cfg.Output.Color)
		if err != nil {
			color.Red("%v", err)
			return
		}
		defer formatter.Close()

		if err := formatter.Output(output.CohesionReport(result)); err != nil {
			color.Red("%v", err)
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := watcher.Start(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
