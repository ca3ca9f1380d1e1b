package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/guardline/aegis/pkg/oracle"
	"github.com/guardline/aegis/pkg/severity"
)

// scoredAnalyzer adapts one oracle scoring task to the Analyzer contract.
// Threat, manipulation, and red-flag analysis differ only in the task they
// ask and the kind they report.
type scoredAnalyzer struct {
	kind    Kind
	task    oracle.Task
	client  oracle.Client
	timeout time.Duration
}

func newScored(kind Kind, task oracle.Task, client oracle.Client, timeout time.Duration) *scoredAnalyzer {
	return &scoredAnalyzer{kind: kind, task: task, client: client, timeout: timeout}
}

// NewThreat analyzes for physical danger: violence, blackmail, stalking.
func NewThreat(client oracle.Client, timeout time.Duration) Analyzer {
	return newScored(KindThreat, oracle.TaskThreat, client, timeout)
}

// NewManipulation analyzes for psychological manipulation tactics.
func NewManipulation(client oracle.Client, timeout time.Duration) Analyzer {
	return newScored(KindManipulation, oracle.TaskManipulation, client, timeout)
}

// NewRedFlag analyzes for relationship warning signs.
func NewRedFlag(client oracle.Client, timeout time.Duration) Analyzer {
	return newScored(KindRedFlag, oracle.TaskRedFlag, client, timeout)
}

func (a *scoredAnalyzer) Kind() Kind             { return a.kind }
func (a *scoredAnalyzer) Timeout() time.Duration { return a.timeout }

func (a *scoredAnalyzer) Analyze(ctx context.Context, req *Request) (*Verdict, error) {
	res, err := a.client.Classify(ctx, req.Event.RawText, a.task)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, a.kind, err)
	}
	return verdictFromResult(a.kind, res), nil
}

// verdictFromResult maps an oracle answer onto a verdict, clamping severity
// and normalizing tags into the closed category set.
func verdictFromResult(kind Kind, res *oracle.Result) *Verdict {
	var cats []severity.Category
	seen := map[severity.Category]bool{}
	for _, tag := range res.Tags {
		c := severity.ParseCategory(tag)
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	conf := res.Confidence
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}
	return &Verdict{
		Kind:       kind,
		Severity:   severity.Clamp(res.Severity),
		Categories: cats,
		Confidence: conf,
		Rationale:  res.Rationale,
		Action:     res.Action,
		ProducedAt: time.Now(),
	}
}
