// Package archive keeps a sqlite side-archive of every extracted address.
// The resumability contract lives in the JSON checkpoint; this store exists
// for querying leads across runs.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS emails (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT,
    item TEXT,
    email TEXT,
    scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_emails_item_email ON emails(item, email);
CREATE INDEX IF NOT EXISTS idx_emails_item ON emails(item);
`

// Store appends addresses to a sqlite database, one row per (item, email),
// deduplicated across runs via INSERT OR IGNORE.
type Store struct {
	db     *sql.DB
	runID  string
	logger *log.Logger
}

func Open(path string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		logger.Printf("[!] Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	return &Store{db: db, runID: uuid.New().String(), logger: logger}, nil
}

// RunID identifies this process run on every row it writes.
func (s *Store) RunID() string {
	return s.runID
}

// Record inserts the addresses found for item. Already-archived (item, email)
// pairs are ignored.
func (s *Store) Record(ctx context.Context, item string, emails []string) error {
	const stmt = `INSERT OR IGNORE INTO emails (run_id, item, email, scraped_at)
        VALUES (?, ?, ?, ?);`

	now := time.Now().UTC().Format(time.RFC3339)
	for _, email := range emails {
		if _, err := s.db.ExecContext(ctx, stmt, s.runID, item, email, now); err != nil {
			return fmt.Errorf("archive %q for %q: %w", email, item, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
