package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"search_email_scraper/internal/config"
	"search_email_scraper/internal/source"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Scrape addresses per location",
	Long: "Reads locations from a CSV column, runs one search query per location, and\n" +
		"records the addresses found on each result page under that location.",
	RunE: runLocations,
}

var (
	locationsInput      string
	locationsColumn     int
	locationsWithHeader bool
	locationsConfigPath string
)

func init() {
	locationsCmd.Flags().StringVarP(&locationsInput, "input", "i", "", "CSV file with one location per row (required)")
	locationsCmd.Flags().IntVar(&locationsColumn, "column", 3, "Zero-based CSV column holding the location")
	locationsCmd.Flags().BoolVar(&locationsWithHeader, "header", true, "Treat the first row as a header")
	locationsCmd.Flags().StringVarP(&locationsConfigPath, "config", "c", "config.json", "Path to config file")

	if err := locationsCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(locationsCmd)
}

func runLocations(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(locationsConfigPath, bootstrapLogger())
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLogger := newLogger(cfg.LogFile)
	defer closeLogger()

	items, err := source.ColumnFromCSV(locationsInput, locationsColumn, locationsWithHeader)
	if err != nil {
		return err
	}
	logger.Printf("[*] Loaded %d unique location(s) from %s", len(items), locationsInput)

	buildQuery := func(item string) string {
		return fmt.Sprintf(cfg.LocationQueryTemplate, item)
	}
	return runScrape(cmd.Context(), logger, cfg, items, buildQuery)
}
