package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps evidence records in Postgres. The payload column holds the
// sealed record as JSONB; the hash column is duplicated for indexed audits.
type PGStore struct {
	pool *pgxpool.Pool
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS evidence_records (
	event_id   TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	hash       TEXT NOT NULL,
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS evidence_records_session_idx ON evidence_records (session_id);
`

// NewPGStore connects and ensures the schema exists.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrStoreFailure, err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ensure schema: %v", ErrStoreFailure, err)
	}
	return &PGStore{pool: pool}, nil
}

var _ Store = (*PGStore)(nil)

// Append seals the record if needed and inserts it. Re-inserting the same
// event is rejected; evidence is append-only.
func (s *PGStore) Append(ctx context.Context, rec *Record) error {
	if rec.Hash == "" {
		if err := rec.Seal(); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: marshal record: %v", ErrStoreFailure, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO evidence_records (event_id, session_id, hash, payload) VALUES ($1, $2, $3, $4)`,
		rec.EventID, rec.SessionID, rec.Hash, payload)
	if err != nil {
		return fmt.Errorf("%w: insert: %v", ErrStoreFailure, err)
	}
	return nil
}

// Get fetches and verifies one record.
func (s *PGStore) Get(ctx context.Context, eventID string) (*Record, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM evidence_records WHERE event_id = $1`, eventID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select: %v", ErrStoreFailure, err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("%w: undecodable payload for event %s", ErrCorrupted, eventID)
	}
	if err := rec.Verify(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}
