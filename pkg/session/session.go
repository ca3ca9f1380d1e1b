// Package session tracks per-conversation history: which events were seen and
// how severity has trended. Histories are bounded FIFO windows; appends for
// the same session are serialized, different sessions proceed concurrently.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrStoreFailure signals the backing store could not be reached. Callers
// degrade to an ephemeral context rather than abort the run.
var ErrStoreFailure = errors.New("session store failure")

// Context is one conversation's rolling state.
type Context struct {
	SessionID     string    `json:"session_id"`
	RecentEvents  []string  `json:"recent_events"`  // event IDs, oldest first
	SeverityTrend []int     `json:"severity_trend"` // overall severities, oldest first
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Clone returns a deep copy safe to hand to concurrent readers.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	cp := *c
	cp.RecentEvents = append([]string(nil), c.RecentEvents...)
	cp.SeverityTrend = append([]int(nil), c.SeverityTrend...)
	return &cp
}

// Escalating reports whether the severity trend has been rising over the last
// three observations.
func (c *Context) Escalating() bool {
	n := len(c.SeverityTrend)
	if n < 3 {
		return false
	}
	a, b, cc := c.SeverityTrend[n-3], c.SeverityTrend[n-2], c.SeverityTrend[n-1]
	return cc > b && b >= a
}

// Store is the session persistence contract.
//
// Get returns the current context for a session, creating an empty one for
// unknown IDs; it never returns nil with a nil error. Append records one
// event outcome; appends to the same session are serialized by the store.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Context, error)
	Append(ctx context.Context, sessionID, eventID string, overallSeverity int) error
}

// trim drops the oldest entries so both windows stay within cap.
func trim(c *Context, cap int) {
	if cap <= 0 {
		return
	}
	if n := len(c.RecentEvents); n > cap {
		c.RecentEvents = c.RecentEvents[n-cap:]
	}
	if n := len(c.SeverityTrend); n > cap {
		c.SeverityTrend = c.SeverityTrend[n-cap:]
	}
}
