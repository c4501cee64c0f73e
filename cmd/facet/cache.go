package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/facetcode/facet/internal/service/analysis"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count and size",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analysis results",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	stats, err := svc.CacheStats()
	if err != nil {
		return err
	}

	fmt.Printf("Entries: %d\n", stats.Entries)
	fmt.Printf("Size:    %.1f KB\n", float64(stats.TotalSize)/1024)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	if err := svc.ClearCache(); err != nil {
		return err
	}

	color.Green("Cache cleared")
	return nil
}
