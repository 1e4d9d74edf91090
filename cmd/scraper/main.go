// Package main provides the search email scraper CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Search-engine email scraper",
	Long: "Drives a headless browser through search queries built from a work-item list,\n" +
		"scrolls each result page to exhaustion, extracts email addresses, and\n" +
		"checkpoints results per item so an interrupted crawl resumes where it left off.",
}

func main() {
	// Load .env if present; CHROME_PATH is read from the environment.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
