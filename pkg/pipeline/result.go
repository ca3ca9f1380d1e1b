// Package pipeline runs the fixed analysis stage machine over incoming
// events and folds analyzer verdicts into one aggregate result.
//
// Stage order: Context -> Language -> Panic -> Branch -> Parallel scoring ->
// Evidence -> Legal -> RealityCheck -> Finalize. Analyzer unavailability
// degrades the run; it never aborts it. Only invalid input (before the
// pipeline) and evidence corruption (on reads) surface as caller errors.
package pipeline

import (
	"github.com/guardline/aegis/pkg/analyzer"
	"github.com/guardline/aegis/pkg/legal"
	"github.com/guardline/aegis/pkg/recall"
	"github.com/guardline/aegis/pkg/severity"
)

// AggregateResult is the terminal state of one run. Every run reaches one.
type AggregateResult struct {
	EventID          string                `json:"event_id"`
	SessionID        string                `json:"session_id"`
	OverallSeverity  int                   `json:"overall_severity"`
	DominantCategory severity.Category     `json:"dominant_category"`
	Verdicts         []analyzer.Verdict    `json:"verdicts"`
	Panic            *analyzer.PanicSignal `json:"panic,omitempty"`
	Legal            *legal.Guidance       `json:"legal,omitempty"`
	RealityCheck     string                `json:"reality_check,omitempty"`
	SimilarCases     []recall.Case         `json:"similar_cases,omitempty"`
	Language         string                `json:"language"`
	Emergency        bool                  `json:"emergency"`
	Degraded         []string              `json:"degraded,omitempty"` // analyzers that could not answer
	Skipped          []string              `json:"skipped,omitempty"`  // analyzers skipped by the branch
	EvidenceWritten  bool                  `json:"evidence_written"`
	StoreDegraded    bool                  `json:"store_degraded"`
	Escalating       bool                  `json:"escalating"`
	LatencyMs        int64                 `json:"latency_ms"`
}
