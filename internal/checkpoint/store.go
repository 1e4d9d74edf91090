// Package checkpoint persists per-item results so an interrupted run can
// resume without repeating completed work.
package checkpoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"os"
)

// Record maps a work item to the sorted addresses extracted for it. An empty
// (non-nil) slice marks an item that was processed and yielded nothing, which
// is distinct from the item being absent.
type Record map[string][]string

// Contains reports whether item has already been processed.
func (r Record) Contains(item string) bool {
	_, ok := r[item]
	return ok
}

// Total returns the number of addresses across all items.
func (r Record) Total() int {
	n := 0
	for _, emails := range r {
		n += len(emails)
	}
	return n
}

// Store reads and writes a Record as a pretty-printed JSON file. The file is
// rewritten in full after every mutation; a corrupt or missing file is never
// fatal and simply means starting from an empty record.
type Store struct {
	path   string
	logger *log.Logger
}

func NewStore(path string, logger *log.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the checkpoint file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the checkpoint file. A missing, empty, or unparseable file
// yields an empty record; the condition is logged but the run proceeds.
func (s *Store) Load() Record {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}
	}
	if err != nil {
		s.logger.Printf("[!] Could not read checkpoint %s, starting fresh: %v", s.path, err)
		return Record{}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		s.logger.Printf("[!] Checkpoint %s is empty, starting fresh", s.path)
		return Record{}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Printf("[!] Corrupted checkpoint %s, starting fresh: %v", s.path, err)
		return Record{}
	}
	if rec == nil {
		rec = Record{}
	}
	return rec
}

// Save rewrites the full record. The write goes through a temp file and a
// rename so a crash mid-save leaves either the old or the new content; a
// half-written file would be tolerated by Load anyway.
func (s *Store) Save(rec Record) error {
	// Zero-match items must round-trip as [], not null.
	for item, emails := range rec {
		if emails == nil {
			rec[item] = []string{}
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
