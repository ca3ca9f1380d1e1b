// Package analyzer defines the uniform contract every analysis agent
// implements, plus the concrete oracle-backed analyzers. An analyzer that
// cannot answer returns ErrUnavailable; the orchestrator treats that as a
// degraded verdict, never as a failed run.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guardline/aegis/pkg/session"
	"github.com/guardline/aegis/pkg/severity"
)

// Kind is the closed set of analyzer identities.
type Kind int

const (
	KindThreat Kind = iota
	KindManipulation
	KindRedFlag
	KindPanic
	KindEvidence
	KindLegal
	KindMultilingual
	KindRealityCheck
)

var kindNames = [...]string{
	"threat",
	"manipulation",
	"redflag",
	"panic",
	"evidence",
	"legal",
	"multilingual",
	"realitycheck",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Sentinel errors. ErrUnavailable is a value-level outcome; ErrInvalidInput
// is the only analyzer error that reaches API callers.
var (
	ErrUnavailable  = errors.New("analyzer unavailable")
	ErrInvalidInput = errors.New("invalid input")
)

// InputEvent is one incoming message to analyze.
type InputEvent struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	Timestamp        time.Time `json:"timestamp"`
	RawText          string    `json:"raw_text"`
	MediaRef         string    `json:"media_ref,omitempty"`
	DeclaredLanguage string    `json:"declared_language,omitempty"`
	Jurisdiction     string    `json:"jurisdiction,omitempty"`
	PanicTrigger     bool      `json:"panic_trigger,omitempty"`
}

// Validate enforces the minimal shape the pipeline needs.
func (e *InputEvent) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidInput)
	}
	if strings.TrimSpace(e.RawText) == "" && e.MediaRef == "" {
		return fmt.Errorf("%w: event carries neither text nor media", ErrInvalidInput)
	}
	if e.SessionID == "" {
		return fmt.Errorf("%w: missing session id", ErrInvalidInput)
	}
	return nil
}

// Request is the analyzer input: the event plus whatever run-level context the
// orchestrator has established so far.
type Request struct {
	Event    *InputEvent
	Session  *session.Context
	Language string // resolved BCP-47 tag, empty before the language stage
}

// Verdict is one analyzer's finding.
type Verdict struct {
	Kind       Kind                `json:"kind"`
	Severity   int                 `json:"severity"`
	Categories []severity.Category `json:"categories,omitempty"`
	Confidence float64             `json:"confidence"`
	Rationale  string              `json:"rationale,omitempty"`
	Action     string              `json:"action,omitempty"`
	ProducedAt time.Time           `json:"produced_at"`
}

// PanicSignal is the panic analyzer's routing decision.
type PanicSignal struct {
	Triggered       bool   `json:"triggered"`
	TriggerSource   string `json:"trigger_source,omitempty"` // "manual" or "pattern" or "oracle"
	EscalationLevel int    `json:"escalation_level"`
	MessageTemplate string `json:"message_template,omitempty"`
}

// Analyzer is the uniform agent contract. Analyze must honor ctx and return
// within Timeout when the orchestrator enforces it.
type Analyzer interface {
	Kind() Kind
	Timeout() time.Duration
	Analyze(ctx context.Context, req *Request) (*Verdict, error)
}
