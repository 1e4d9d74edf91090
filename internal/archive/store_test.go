package archive

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive.sqlite"), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecord_InsertsRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "Austin", []string{"a@x.com", "b@x.com"}))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM emails WHERE item = ?`, "Austin").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestRecord_IgnoresDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "Austin", []string{"a@x.com"}))
	require.NoError(t, s.Record(ctx, "Austin", []string{"a@x.com"}))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM emails`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRecord_EmptyResultSetWritesNothing(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Record(context.Background(), "Dallas", nil))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM emails`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestRunID_Stable(t *testing.T) {
	s := openTestStore(t)
	assert.NotEmpty(t, s.RunID())
	assert.Equal(t, s.RunID(), s.RunID())
}
