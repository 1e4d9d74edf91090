// Package browser owns the lifecycle of a single chromedp session and the
// scroll-to-exhaustion protocol run against it.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// ErrExtensionMissing marks a required browser extension path that does not
// exist. This is a startup precondition, not a per-item retry case.
var ErrExtensionMissing = errors.New("extension not found")

// ErrNotStarted is returned when Fetch is called without a live session.
var ErrNotStarted = errors.New("browser session not started")

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:131.0) Gecko/20100101 Firefox/131.0",
}

// Options configure the managed session.
type Options struct {
	Headless       bool
	UserAgents     []string // pool to pick from; defaults to the built-in one
	ExtensionPaths []string // unpacked extension directories, loaded at start
	ExecPath       string   // optional browser binary, e.g. from CHROME_PATH
	BaseURL        string   // search endpoint; defaults to Google web search
	ResultsPerPage int      // num= parameter; defaults to 50
	SettlePause    Interval // initial wait after navigation before scrolling
}

// Manager owns exactly one live browser session at a time. It is not safe
// for concurrent use; the orchestrator drives it strictly sequentially.
type Manager struct {
	opts     Options
	scroller *Scroller
	logger   *log.Logger
	rng      *rand.Rand
	sleep    func(time.Duration)

	sessCtx     context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

func NewManager(opts Options, scroller *Scroller, logger *log.Logger) *Manager {
	return &Manager{
		opts:     opts,
		scroller: scroller,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    time.Sleep,
	}
}

// Start verifies startup preconditions and launches a fresh browser. Any
// previous session must have been closed first.
func (m *Manager) Start(ctx context.Context) error {
	for _, path := range m.opts.ExtensionPaths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrExtensionMissing, path)
		}
	}

	ua := m.userAgent()
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(ua),
	)
	if !m.opts.Headless {
		opts = append(opts, chromedp.Flag("start-maximized", true))
	}
	if len(m.opts.ExtensionPaths) > 0 {
		opts = append(opts, chromedp.Flag("load-extension", strings.Join(m.opts.ExtensionPaths, ",")))
	}
	if m.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	sessCtx, cancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the browser to launch now, so a broken
	// install fails here instead of on the first navigation.
	if err := chromedp.Run(sessCtx); err != nil {
		cancel()
		allocCancel()
		return fmt.Errorf("launch browser: %w", err)
	}

	m.sessCtx = sessCtx
	m.cancel = cancel
	m.allocCancel = allocCancel
	m.logger.Printf("[*] Browser session started (agent: %s)", ua)
	return nil
}

// Fetch navigates to the search results for query, waits for the page to
// settle, scrolls it to exhaustion, and returns the rendered page HTML.
// Any failure here is transient from the caller's point of view: restart the
// session and retry the same item.
func (m *Manager) Fetch(ctx context.Context, query string) (string, error) {
	if m.sessCtx == nil {
		return "", ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := m.searchURL(query)
	if err := chromedp.Run(m.sessCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("navigate %s: %w", target, err)
	}

	m.sleep(m.opts.SettlePause.pick(m.rng))

	rounds, err := m.scroller.ScrollToEnd(m.sessCtx, livePage{})
	if err != nil {
		return "", fmt.Errorf("scroll %s: %w", target, err)
	}
	m.logger.Printf("[*] Page stabilized after %d scroll(s)", rounds)

	var html string
	if err := chromedp.Run(m.sessCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}
	return html, nil
}

// Restart tears down the current session (best effort) and starts a new one.
// A failure here is the unrecoverable case: the caller should persist
// progress and stop.
func (m *Manager) Restart(ctx context.Context) error {
	m.logger.Printf("[!] Restarting browser session")
	m.Close()
	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("restart session: %w", err)
	}
	return nil
}

// Close releases the session. It is idempotent and safe on every exit path.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.allocCancel != nil {
		m.allocCancel()
		m.allocCancel = nil
	}
	if m.sessCtx != nil {
		m.sessCtx = nil
		m.logger.Printf("[*] Browser closed")
	}
}

func (m *Manager) userAgent() string {
	pool := m.opts.UserAgents
	if len(pool) == 0 {
		pool = defaultUserAgents
	}
	return pool[m.rng.Intn(len(pool))]
}

func (m *Manager) searchURL(query string) string {
	base := m.opts.BaseURL
	if base == "" {
		base = "https://www.google.com/search"
	}
	n := m.opts.ResultsPerPage
	if n <= 0 {
		n = 50
	}
	return fmt.Sprintf("%s?q=%s&num=%d", base, url.QueryEscape(query), n)
}

// livePage adapts the current chromedp page to the ScrollTarget interface.
type livePage struct{}

func (livePage) ContentHeight(ctx context.Context) (int64, error) {
	var height int64
	err := chromedp.Run(ctx, chromedp.Evaluate(`document.body.scrollHeight`, &height))
	return height, err
}

func (livePage) GrowContent(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}
