package scraper_test

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search_email_scraper/internal/checkpoint"
	"search_email_scraper/internal/scraper"
)

// fakeProvider satisfies scraper.PageProvider without a browser.
type fakeProvider struct {
	pages      map[string]string // query -> content
	fetchFails int               // first N fetches fail
	restartErr error

	startErr error
	fetches  []string
	restarts int
	closed   bool
}

func (p *fakeProvider) Start(context.Context) error { return p.startErr }

func (p *fakeProvider) Fetch(_ context.Context, query string) (string, error) {
	p.fetches = append(p.fetches, query)
	if p.fetchFails > 0 {
		p.fetchFails--
		return "", errors.New("tab crashed")
	}
	return p.pages[query], nil
}

func (p *fakeProvider) Restart(context.Context) error {
	p.restarts++
	return p.restartErr
}

func (p *fakeProvider) Close() { p.closed = true }

type fakeArchive struct {
	records map[string][]string
}

func (a *fakeArchive) Record(_ context.Context, item string, emails []string) error {
	if a.records == nil {
		a.records = map[string][]string{}
	}
	a.records[item] = emails
	return nil
}

func newRunner(t *testing.T, p *fakeProvider) (*scraper.Runner, *checkpoint.Store) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	store := checkpoint.NewStore(filepath.Join(t.TempDir(), "checkpoint.json"), logger)
	return &scraper.Runner{
		Provider:   p,
		Store:      store,
		BuildQuery: func(item string) string { return "q:" + item },
		Logger:     logger,
	}, store
}

func TestRun_EndToEnd(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		"q:Austin": `<html><body>reach me at a@x.com</body></html>`,
		"q:Dallas": `<html><body>nothing email-shaped here</body></html>`,
	}}
	runner, store := newRunner(t, provider)

	rec, sum, err := runner.Run(context.Background(), []string{"Austin", "Dallas"})
	require.NoError(t, err)

	assert.Equal(t, checkpoint.Record{
		"Austin": {"a@x.com"},
		"Dallas": {},
	}, rec)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 0, sum.Skipped)
	assert.Equal(t, 1, sum.TotalEmails)
	assert.True(t, provider.closed)

	// The durable store agrees with the in-memory record.
	assert.Equal(t, rec, store.Load())
}

func TestRun_IdempotentSkip(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		"q:Dallas": "b@y.com",
	}}
	runner, store := newRunner(t, provider)
	require.NoError(t, store.Save(checkpoint.Record{"Austin": {"kept@x.com"}}))

	rec, sum, err := runner.Run(context.Background(), []string{"Austin", "Dallas"})
	require.NoError(t, err)

	// Austin was never fetched and its results are untouched.
	assert.NotContains(t, provider.fetches, "q:Austin")
	assert.Equal(t, []string{"kept@x.com"}, rec["Austin"])
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Processed)
}

func TestRun_WriteThroughAfterEachItem(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		"q:Austin": "a@x.com",
		"q:Dallas": "d@x.com",
	}}
	runner, store := newRunner(t, provider)

	_, _, err := runner.Run(context.Background(), []string{"Austin"})
	require.NoError(t, err)

	// Reloading from disk yields exactly what was computed for Austin,
	// independent of anything that happens later.
	got := store.Load()
	assert.Equal(t, checkpoint.Record{"Austin": {"a@x.com"}}, got)
}

func TestRun_TransientFailureRetriesSameItem(t *testing.T) {
	provider := &fakeProvider{
		pages:      map[string]string{"q:Austin": "a@x.com"},
		fetchFails: 1,
	}
	runner, _ := newRunner(t, provider)

	rec, sum, err := runner.Run(context.Background(), []string{"Austin"})
	require.NoError(t, err)

	assert.Equal(t, []string{"q:Austin", "q:Austin"}, provider.fetches)
	assert.Equal(t, 1, provider.restarts)
	assert.Equal(t, []string{"a@x.com"}, rec["Austin"])
	assert.Equal(t, 1, sum.Processed)
}

func TestRun_SingleRecoveryThenAbort(t *testing.T) {
	provider := &fakeProvider{
		pages:      map[string]string{"q:Austin": "first@x.com"},
		restartErr: errors.New("chrome refuses to start"),
	}
	runner, store := newRunner(t, provider)

	// First run processes Austin so the second run has progress to keep.
	rec, sum, err := runner.Run(context.Background(), []string{"Austin"})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)

	// Second run: Dallas always fails to fetch and recovery fails too.
	provider.fetchFails = 1 << 30
	rec, _, err = runner.Run(context.Background(), []string{"Austin", "Dallas", "Houston"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restart session")

	// Exactly one recovery was attempted, then the run stopped.
	assert.Equal(t, 1, provider.restarts)

	// Houston was never attempted.
	assert.NotContains(t, provider.fetches, "q:Houston")

	// Progress was persisted as-is before stopping.
	assert.Equal(t, rec, store.Load())
	assert.True(t, rec.Contains("Austin"))
	assert.False(t, rec.Contains("Dallas"))
	assert.True(t, provider.closed)
}

func TestRun_StartFailureIsFatal(t *testing.T) {
	provider := &fakeProvider{startErr: errors.New("no chrome binary")}
	runner, _ := newRunner(t, provider)

	_, _, err := runner.Run(context.Background(), []string{"Austin"})
	require.Error(t, err)
	assert.Empty(t, provider.fetches)
}

func TestRun_ArchiveReceivesResults(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		"q:Austin": "a@x.com b@x.com",
	}}
	runner, _ := newRunner(t, provider)
	arch := &fakeArchive{}
	runner.Archive = arch

	_, _, err := runner.Run(context.Background(), []string{"Austin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, arch.records["Austin"])
}

func TestRun_CancelledContextStopsBetweenItems(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{}}
	runner, _ := newRunner(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, sum, err := runner.Run(ctx, []string{"Austin", "Dallas"})
	require.NoError(t, err)
	assert.Empty(t, provider.fetches)
	assert.Equal(t, 0, sum.Processed)
	assert.True(t, provider.closed)
}
