// Package scraper runs the resumable extraction loop over a work-item
// sequence: skip what is already done, fetch a rendered result page per item,
// extract addresses, and persist after every item so a crash loses at most
// the in-flight one.
package scraper

import (
	"context"
	"fmt"
	"log"

	"search_email_scraper/internal/checkpoint"
	"search_email_scraper/internal/extract"
)

// PageProvider is the browser automation boundary. Anything that can start a
// session, return rendered content for a query, and replace a broken session
// is substitutable here; tests use a fake.
type PageProvider interface {
	Start(ctx context.Context) error
	Fetch(ctx context.Context, query string) (string, error)
	Restart(ctx context.Context) error
	Close()
}

// Archive receives the addresses of every processed item as a side output.
// Failures are logged, never fatal.
type Archive interface {
	Record(ctx context.Context, item string, emails []string) error
}

// Summary describes what a run did.
type Summary struct {
	Processed   int // items fetched and persisted this run
	Skipped     int // items already present in the checkpoint
	TotalEmails int // addresses across the whole record, prior runs included
}

// Runner coordinates one run. Items are processed strictly in order; a later
// item is never attempted before an earlier one is done, skipped, or the run
// has aborted.
type Runner struct {
	Provider   PageProvider
	Store      *checkpoint.Store
	Archive    Archive // optional
	BuildQuery func(item string) string
	Logger     *log.Logger
}

// Run processes items and returns the final record. The returned error is
// non-nil only for the two run-stopping conditions: the initial session
// cannot be created, or a session restart fails mid-run. In the latter case
// progress has already been persisted.
//
// A transient fetch failure triggers exactly one restart attempt, after which
// the same item is retried; an item that keeps failing is retried across as
// many failure/restart cycles as it takes, because it is only marked done on
// success.
func (r *Runner) Run(ctx context.Context, items []string) (checkpoint.Record, Summary, error) {
	rec := r.Store.Load()
	var sum Summary

	if err := r.Provider.Start(ctx); err != nil {
		return rec, sum, fmt.Errorf("start session: %w", err)
	}
	defer r.Provider.Close()

	for i := 0; i < len(items); {
		item := items[i]

		if err := ctx.Err(); err != nil {
			r.Logger.Printf("[!] Shutdown requested, stopping before %q", item)
			break
		}

		if rec.Contains(item) {
			r.Logger.Printf("[*] Skipping already processed item: %s", item)
			sum.Skipped++
			i++
			continue
		}

		query := r.BuildQuery(item)
		r.Logger.Printf("[*] Searching: %s", query)

		content, err := r.Provider.Fetch(ctx, query)
		if err != nil {
			r.Logger.Printf("[X] Session error for %q: %v", item, err)
			if rerr := r.Provider.Restart(ctx); rerr != nil {
				r.Logger.Printf("[X] Could not restart session, saving progress and stopping: %v", rerr)
				if serr := r.Store.Save(rec); serr != nil {
					r.Logger.Printf("[!] Failed to save checkpoint: %v", serr)
				}
				sum.TotalEmails = rec.Total()
				return rec, sum, fmt.Errorf("restart session: %w", rerr)
			}
			r.Logger.Printf("[*] Session restarted, retrying %q", item)
			continue
		}

		emails := extract.Emails(content)
		rec[item] = emails
		r.Logger.Printf("[+] Found %d address(es) for %q", len(emails), item)

		if err := r.Store.Save(rec); err != nil {
			// Best-effort persistence: keep going with the in-memory record.
			r.Logger.Printf("[!] Failed to save checkpoint: %v", err)
		}
		if r.Archive != nil {
			if err := r.Archive.Record(ctx, item, emails); err != nil {
				r.Logger.Printf("[!] Failed to archive results for %q: %v", item, err)
			}
		}

		sum.Processed++
		i++
	}

	sum.TotalEmails = rec.Total()
	return rec, sum, nil
}
