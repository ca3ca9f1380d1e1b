package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/guardline/aegis/pkg/oracle"
)

// RealityCheckAnalyzer produces a probing message the user can send back to
// safely test the counterpart's honesty. Best effort: it is skipped on the
// emergency branch and degrades silently when the oracle is out.
type RealityCheckAnalyzer struct {
	client  oracle.Client
	timeout time.Duration
}

// NewRealityCheck creates the reality-check analyzer.
func NewRealityCheck(client oracle.Client, timeout time.Duration) *RealityCheckAnalyzer {
	return &RealityCheckAnalyzer{client: client, timeout: timeout}
}

var _ Analyzer = (*RealityCheckAnalyzer)(nil)

func (a *RealityCheckAnalyzer) Kind() Kind             { return KindRealityCheck }
func (a *RealityCheckAnalyzer) Timeout() time.Duration { return a.timeout }

func (a *RealityCheckAnalyzer) Analyze(ctx context.Context, req *Request) (*Verdict, error) {
	res, err := a.client.Classify(ctx, req.Event.RawText, oracle.TaskRealityCheck)
	if err != nil {
		return nil, fmt.Errorf("%w: realitycheck: %v", ErrUnavailable, err)
	}
	if res.Message == "" {
		return nil, fmt.Errorf("%w: realitycheck: empty message", ErrUnavailable)
	}
	return &Verdict{
		Kind:       KindRealityCheck,
		Severity:   0,
		Confidence: res.Confidence,
		Rationale:  "probing suggestion generated",
		Action:     res.Message,
		ProducedAt: time.Now(),
	}, nil
}
