package session

import (
	"context"
	"sync"
	"time"
)

// ============================================================================
// IN-MEMORY SESSION STORE
// ============================================================================
// Thread-safe in-memory session storage with TTL-based cleanup.
//
// Features:
//   - Concurrent-safe access across sessions
//   - Automatic TTL expiration of idle sessions
//   - Bounded FIFO history windows per session

// MemoryStore implements Store with in-memory storage. Suitable for
// single-node deployments; use the Redis store for distributed ones.
type MemoryStore struct {
	sessions map[string]*Context
	mu       sync.RWMutex

	// Configuration
	cap        int           // History window size per session
	maxAge     time.Duration // Session TTL (default: 24 hours)
	cleanupTTL time.Duration // Cleanup interval (default: 5 minutes)

	// Cleanup goroutine control
	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// MemoryOption is a functional option for configuring MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxAge sets the maximum idle age for sessions before cleanup.
func WithMaxAge(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.maxAge = d
	}
}

// WithCleanupInterval sets how often the cleanup routine runs.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.cleanupTTL = d
	}
}

// NewMemoryStore creates a new in-memory session store. cap bounds the
// per-session history windows.
func NewMemoryStore(cap int, opts ...MemoryOption) *MemoryStore {
	if cap <= 0 {
		cap = 25
	}
	s := &MemoryStore{
		sessions:    make(map[string]*Context),
		cap:         cap,
		maxAge:      24 * time.Hour,
		cleanupTTL:  5 * time.Minute,
		stopCleanup: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Start background cleanup
	go s.cleanupLoop()

	return s
}

var _ Store = (*MemoryStore)(nil)

// Get returns a copy of the session context, creating an empty one for
// unknown or expired IDs.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || time.Since(sess.UpdatedAt) > s.maxAge {
		// Stale sessions are treated as absent; actual removal happens in
		// cleanupLoop.
		now := time.Now()
		return &Context{SessionID: sessionID, CreatedAt: now, UpdatedAt: now}, nil
	}
	return sess.Clone(), nil
}

// Append records one event outcome. The write lock serializes appends to the
// same session; different sessions only contend on the map lock.
func (s *MemoryStore) Append(ctx context.Context, sessionID, eventID string, overallSeverity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &Context{SessionID: sessionID, CreatedAt: now}
		s.sessions[sessionID] = sess
	}

	sess.RecentEvents = append(sess.RecentEvents, eventID)
	sess.SeverityTrend = append(sess.SeverityTrend, overallSeverity)
	trim(sess, s.cap)
	sess.UpdatedAt = now

	return nil
}

// Len returns the current session count.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
}

// cleanupLoop periodically removes expired sessions.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup removes expired sessions.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.maxAge {
			delete(s.sessions, id)
		}
	}
}
