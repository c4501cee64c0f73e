package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/facetcode/facet/internal/remote"
	"github.com/facetcode/facet/pkg/config"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

func getFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("format")
	return format
}

func getOutputFile(cmd *cobra.Command) string {
	out, _ := cmd.Flags().GetString("output")
	return out
}

// loadConfig honors --config when given, otherwise searches the standard
// locations.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(), nil
}

// resolvePaths clones any GitHub shorthand arguments ("owner/repo@ref")
// and swaps them for the local clone directory. The returned cleanup
// removes the clones.
func resolvePaths(ctx context.Context, paths []string) ([]string, func(), error) {
	var sources []*remote.Source
	cleanup := func() {
		for _, s := range sources {
			s.Cleanup()
		}
	}

	resolved := make([]string, len(paths))
	for i, path := range paths {
		src, err := remote.Parse(path)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if src == nil {
			resolved[i] = path
			continue
		}

		color.Cyan("Cloning %s...", src.URL)
		if err := src.Clone(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		sources = append(sources, src)
		resolved[i] = src.CloneDir
	}

	return resolved, cleanup, nil
}
