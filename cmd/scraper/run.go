package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"search_email_scraper/internal/archive"
	"search_email_scraper/internal/browser"
	"search_email_scraper/internal/checkpoint"
	"search_email_scraper/internal/config"
	"search_email_scraper/internal/scraper"
)

// bootstrapLogger covers the window before the config names the log file.
func bootstrapLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
}

// newLogger writes to stderr and, when logFile is set, to the log file as
// well. The returned cleanup closes the file.
func newLogger(logFile string) (*log.Logger, func()) {
	w := io.Writer(os.Stderr)
	cleanup := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[!] Could not open log file %s, logging to stderr only: %v", logFile, err)
		} else {
			w = io.MultiWriter(os.Stderr, f)
			cleanup = func() { _ = f.Close() }
		}
	}

	return log.New(w, "", log.LstdFlags|log.Lmicroseconds), cleanup
}

func interval(minSec, maxSec float64) browser.Interval {
	return browser.Interval{Min: config.Seconds(minSec), Max: config.Seconds(maxSec)}
}

// runScrape wires the components and drives the orchestrator over items.
func runScrape(ctx context.Context, logger *log.Logger, cfg config.Config, items []string, buildQuery func(string) string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := checkpoint.NewStore(cfg.CheckpointFile, logger)

	var arch scraper.Archive
	if cfg.ArchiveFile != "" {
		s, err := archive.Open(cfg.ArchiveFile, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		logger.Printf("[*] Archiving to %s (run %s)", cfg.ArchiveFile, s.RunID())
		arch = s
	}

	scroller := browser.NewScroller(
		interval(cfg.LoadMinSec, cfg.LoadMaxSec),
		interval(cfg.StepMinSec, cfg.StepMaxSec),
		cfg.MaxScrollRounds,
	)
	manager := browser.NewManager(browser.Options{
		Headless:       cfg.Headless,
		UserAgents:     cfg.UserAgents,
		ExtensionPaths: cfg.ExtensionPaths,
		ExecPath:       os.Getenv("CHROME_PATH"),
		ResultsPerPage: cfg.ResultsPerPage,
		SettlePause:    interval(cfg.SettleMinSec, cfg.SettleMaxSec),
	}, scroller, logger)

	runner := &scraper.Runner{
		Provider:   manager,
		Store:      store,
		Archive:    arch,
		BuildQuery: buildQuery,
		Logger:     logger,
	}

	logger.Printf("[*] Processing %d work item(s), checkpoint: %s", len(items), cfg.CheckpointFile)

	rec, sum, err := runner.Run(ctx, items)
	if err != nil {
		return err
	}

	logger.Printf("[+] All done. Processed %d, skipped %d, %d unique address(es) across %d item(s).",
		sum.Processed, sum.Skipped, sum.TotalEmails, len(rec))
	return nil
}
