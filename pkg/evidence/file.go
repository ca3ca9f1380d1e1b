package evidence

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore appends records to a JSONL file, one sealed record per line.
// Default store for single-node installs; use the Postgres store when
// durability and queries matter.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates the store. The file is created lazily on first append.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = "evidence_records.jsonl"
	}
	return &FileStore{path: path}
}

var _ Store = (*FileStore)(nil)

// Append seals the record if needed and writes it as one JSON line.
func (s *FileStore) Append(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Hash == "" {
		if err := rec.Seal(); err != nil {
			return err
		}
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: marshal record: %v", ErrStoreFailure, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrStoreFailure, s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: write record: %v", ErrStoreFailure, err)
	}
	return nil
}

// Get scans for the newest record of the event and verifies it.
func (s *FileStore) Get(ctx context.Context, eventID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrStoreFailure, s.path, err)
	}
	defer f.Close()

	var found *Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			// A malformed line is corruption, but only fatal if it is the
			// record being asked for; keep scanning.
			continue
		}
		if rec.EventID == eventID {
			found = &rec
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", ErrStoreFailure, s.path, err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	if err := found.Verify(); err != nil {
		return nil, err
	}
	return found, nil
}
