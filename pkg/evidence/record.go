// Package evidence persists append-only, tamper-evident snapshots of analyzed
// events. Every record carries a deterministic integrity hash; a read that
// fails verification surfaces ErrCorrupted to the caller instead of silently
// returning altered data.
package evidence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/guardline/aegis/pkg/analyzer"
)

var (
	// ErrCorrupted means a stored record no longer matches its hash.
	ErrCorrupted = errors.New("evidence record corrupted")
	// ErrStoreFailure means the backing store could not be reached.
	ErrStoreFailure = errors.New("evidence store failure")
	// ErrNotFound means no record exists for the event.
	ErrNotFound = errors.New("evidence record not found")
)

// Record is one immutable evidence snapshot.
type Record struct {
	EventID   string                `json:"event_id"`
	SessionID string                `json:"session_id"`
	Timestamp time.Time             `json:"timestamp"`
	RawText   string                `json:"raw_text"`
	Verdicts  []analyzer.Verdict    `json:"verdicts,omitempty"`
	Panic     *analyzer.PanicSignal `json:"panic,omitempty"`
	MediaRefs []string              `json:"media_refs,omitempty"`
	Hash      string                `json:"hash,omitempty"`
}

// digest computes the canonical SHA-256 of the record with Hash cleared.
// JSON marshaling of a fixed struct is deterministic (fields in declaration
// order), so equal records always hash equally.
func (r *Record) digest() (string, error) {
	cp := *r
	cp.Hash = ""
	payload, err := json.Marshal(&cp)
	if err != nil {
		return "", fmt.Errorf("canonicalize record: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Seal computes and sets the integrity hash. Call exactly once, after the
// record is complete and before it is stored.
func (r *Record) Seal() error {
	h, err := r.digest()
	if err != nil {
		return err
	}
	r.Hash = h
	return nil
}

// Verify recomputes the hash and compares. Returns ErrCorrupted on mismatch
// or when the record was never sealed.
func (r *Record) Verify() error {
	if r.Hash == "" {
		return fmt.Errorf("%w: record is unsealed", ErrCorrupted)
	}
	h, err := r.digest()
	if err != nil {
		return err
	}
	if h != r.Hash {
		return fmt.Errorf("%w: hash mismatch for event %s", ErrCorrupted, r.EventID)
	}
	return nil
}

// Store is the evidence persistence contract. Append stores a sealed record;
// Get returns a verified record or ErrCorrupted.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	Get(ctx context.Context, eventID string) (*Record, error)
}
