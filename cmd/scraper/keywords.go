package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"search_email_scraper/internal/config"
	"search_email_scraper/internal/source"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Scrape addresses per keyword in a fixed location",
	Long: "Reads keywords from a CSV column, pairs each with the fixed location as a\n" +
		"\"<keyword> | <location>\" work item, and runs one search query per pair.",
	RunE: runKeywords,
}

var (
	keywordsInput      string
	keywordsColumn     int
	keywordsWithHeader bool
	keywordsLocation   string
	keywordsConfigPath string
)

func init() {
	keywordsCmd.Flags().StringVarP(&keywordsInput, "input", "i", "", "CSV file with one keyword per row (required)")
	keywordsCmd.Flags().IntVar(&keywordsColumn, "column", 0, "Zero-based CSV column holding the keyword")
	keywordsCmd.Flags().BoolVar(&keywordsWithHeader, "header", true, "Treat the first row as a header")
	keywordsCmd.Flags().StringVarP(&keywordsLocation, "location", "l", "", "Fixed location paired with every keyword (required)")
	keywordsCmd.Flags().StringVarP(&keywordsConfigPath, "config", "c", "config.json", "Path to config file")

	if err := keywordsCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}
	if err := keywordsCmd.MarkFlagRequired("location"); err != nil {
		panic(fmt.Sprintf("failed to mark location flag as required: %v", err))
	}

	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(keywordsConfigPath, bootstrapLogger())
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLogger := newLogger(cfg.LogFile)
	defer closeLogger()

	column, err := source.ColumnFromCSV(keywordsInput, keywordsColumn, keywordsWithHeader)
	if err != nil {
		return err
	}
	keywords := source.SortedSet(column)
	items := source.Composite(keywords, keywordsLocation)
	logger.Printf("[*] Loaded %d unique keyword(s) from %s", len(keywords), keywordsInput)

	buildQuery := func(item string) string {
		keyword, location, ok := source.SplitComposite(item)
		if !ok {
			keyword, location = item, keywordsLocation
		}
		return fmt.Sprintf(cfg.KeywordQueryTemplate, keyword, location)
	}
	return runScrape(cmd.Context(), logger, cfg, items, buildQuery)
}
