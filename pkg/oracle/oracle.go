// Package oracle abstracts the external classification services the analyzers
// call. Every backend answers the same narrow question set (Task); the
// pipeline never talks to a provider directly.
//
// Backends degrade, they do not fail: a backend that cannot answer returns
// ErrUnavailable and the caller treats the analyzer as degraded.
package oracle

import (
	"context"
	"errors"
)

// Task identifies the question being asked of a backend.
type Task string

const (
	TaskThreat       Task = "threat"       // physical danger scoring
	TaskManipulation Task = "manipulation" // psychological manipulation scoring
	TaskRedFlag      Task = "redflag"      // relationship red-flag scoring
	TaskPanic        Task = "panic"        // binary distress detection
	TaskLanguage     Task = "language"     // language identification
	TaskRealityCheck Task = "realitycheck" // probing-message generation
)

// ErrUnavailable signals the backend could not produce an answer.
// It is a normal, expected outcome, not a fault.
var ErrUnavailable = errors.New("oracle unavailable")

// Result is one backend answer. Field relevance depends on the task:
// scoring tasks fill Severity/Tags/Confidence/Rationale/Action, TaskLanguage
// fills Language, TaskRealityCheck fills Message.
type Result struct {
	Severity   int      `json:"severity"`
	Tags       []string `json:"tags,omitempty"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale,omitempty"`
	Action     string   `json:"action,omitempty"`
	Language   string   `json:"language,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// Client is the backend contract. Classify must respect ctx cancellation and
// must return ErrUnavailable (possibly wrapped) rather than inventing answers.
type Client interface {
	Classify(ctx context.Context, text string, task Task) (*Result, error)
	Name() string
}

// fallback tries the primary backend and falls through to the backup on
// ErrUnavailable or transport failure.
type fallback struct {
	primary Client
	backup  Client
}

// NewFallback wires a primary backend with a backup. The backup is typically
// the heuristic scorer, which never goes away.
func NewFallback(primary, backup Client) Client {
	return &fallback{primary: primary, backup: backup}
}

func (f *fallback) Name() string {
	return f.primary.Name() + "+" + f.backup.Name()
}

func (f *fallback) Classify(ctx context.Context, text string, task Task) (*Result, error) {
	res, err := f.primary.Classify(ctx, text, task)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		// The run is out of budget; the backup would only mask the timeout.
		return nil, err
	}
	return f.backup.Classify(ctx, text, task)
}
