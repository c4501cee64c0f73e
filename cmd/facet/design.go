package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/facetcode/facet/internal/output"
	"github.com/facetcode/facet/internal/progress"
	"github.com/facetcode/facet/internal/service/analysis"
	scannerSvc "github.com/facetcode/facet/internal/service/scanner"
	"github.com/facetcode/facet/pkg/analyzer"
	"github.com/facetcode/facet/pkg/analyzer/design"
	"github.com/facetcode/facet/pkg/source"
)

var allDesignRules = []string{
	design.RuleMagicNumber,
	design.RuleParameterCount,
	design.RuleBooleanFlag,
	design.RuleNestingDepth,
	design.RuleFanOut,
	design.RuleImportCount,
	design.RuleIdentifierLength,
	design.RuleStaleVariable,
}

var designCmd = &cobra.Command{
	Use:   "design [path...]",
	Short: "Run design-quality rules",
	Long: `Checks source files against design rules: magic-number, parameter-count,
boolean-flag, nesting-depth, fan-out, import-count, identifier-length,
and stale-variable.`,
	RunE: runDesign,
}

func init() {
	designCmd.Flags().String("rules", "", "Comma-separated list of rules to run (default all)")
	designCmd.Flags().Int("max-parameters", 0, "Maximum parameter count (default from config)")
	designCmd.Flags().Int("max-nesting-depth", 0, "Maximum nesting depth (default from config)")
	designCmd.Flags().Int("max-fan-out", 0, "Maximum distinct callees per function (default from config)")
	designCmd.Flags().Int("max-imports", 0, "Maximum imports per file (default from config)")
	designCmd.Flags().Bool("include-tests", false, "Include test files in analysis")
	designCmd.Flags().Int("top", 0, "Show only the first N issues")

	rootCmd.AddCommand(designCmd)
}

func runDesign(cmd *cobra.Command, args []string) error {
	paths := getPaths(args)
	rules, _ := cmd.Flags().GetString("rules")
	maxParams, _ := cmd.Flags().GetInt("max-parameters")
	maxNesting, _ := cmd.Flags().GetInt("max-nesting-depth")
	maxFanOut, _ := cmd.Flags().GetInt("max-fan-out")
	maxImports, _ := cmd.Flags().GetInt("max-imports")
	includeTests, _ := cmd.Flags().GetBool("include-tests")
	topN, _ := cmd.Flags().GetInt("top")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if rules != "" {
		disabled, err := rulesComplement(rules)
		if err != nil {
			return err
		}
		cfg.Design.DisabledRules = disabled
	}
	if maxParams > 0 {
		cfg.Design.MaxParameters = maxParams
	}
	if maxNesting > 0 {
		cfg.Design.MaxNestingDepth = maxNesting
	}
	if maxFanOut > 0 {
		cfg.Design.MaxFanOut = maxFanOut
	}
	if maxImports > 0 {
		cfg.Design.MaxImports = maxImports
	}

	paths, cleanup, err := resolvePaths(context.Background(), paths)
	if err != nil {
		return err
	}
	defer cleanup()

	scanSvc := scannerSvc.New(scannerSvc.WithConfig(cfg))
	scanResult, err := scanSvc.ScanPaths(paths)
	if err != nil {
		return err
	}
	if len(scanResult.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	bar := progress.NewBar("Checking design rules", len(scanResult.Files))
	tracker := analyzer.NewTracker(func(current, total int, path string) {
		bar.Tick()
	})
	tracker.Add(len(scanResult.Files))
	ctx := analyzer.WithTracker(context.Background(), tracker)

	svc := analysis.New(analysis.WithConfig(cfg))
	result, err := svc.AnalyzeDesign(ctx, scanResult.Files, source.NewFilesystem(), analysis.DesignOptions{
		IncludeTests: includeTests,
	})
	bar.Finish()
	if err != nil {
		return fmt.Errorf("design analysis failed: %w", err)
	}

	if topN > 0 && len(result.Issues) > topN {
		result.Issues = result.Issues[:topN]
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), !noColor && cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.DesignReport(result))
}

// rulesComplement turns a comma list of rules to run into the disabled set.
func rulesComplement(rules string) ([]string, error) {
	wanted := make(map[string]bool)
	for _, r := range strings.Split(rules, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		known := false
		for _, name := range allDesignRules {
			if r == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown rule %q (available: %s)", r, strings.Join(allDesignRules, ", "))
		}
		wanted[r] = true
	}

	var disabled []string
	for _, name := range allDesignRules {
		if !wanted[name] {
			disabled = append(disabled, name)
		}
	}
	return disabled, nil
}
