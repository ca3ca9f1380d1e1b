package analyzer

import (
	"context"
	"time"

	"github.com/guardline/aegis/pkg/oracle"
	"github.com/guardline/aegis/pkg/patterns"
	"github.com/guardline/aegis/pkg/severity"
)

// Emergency message templates by escalation level.
const (
	panicTemplateHigh = "Emergency mode active. Your trusted contacts are being notified with your last known details. If you can, call your local emergency number now."
	panicTemplateMed  = "We detected signs of immediate danger. Move to a public, well-lit place and contact someone you trust. Reply CANCEL if this was a false alarm."
)

// PanicAnalyzer decides whether the run takes the emergency branch. It must
// answer fast: manual trigger first, then compiled distress patterns, and
// only then the oracle within the shortest timeout in the pipeline. When even
// that times out, the answer is "no panic" plus a degraded verdict.
type PanicAnalyzer struct {
	client   oracle.Client
	registry *patterns.Registry
	timeout  time.Duration
}

// NewPanic creates the panic analyzer.
func NewPanic(client oracle.Client, timeout time.Duration) *PanicAnalyzer {
	return &PanicAnalyzer{client: client, registry: patterns.Get(), timeout: timeout}
}

var _ Analyzer = (*PanicAnalyzer)(nil)

func (a *PanicAnalyzer) Kind() Kind             { return KindPanic }
func (a *PanicAnalyzer) Timeout() time.Duration { return a.timeout }

// Analyze satisfies the Analyzer contract; orchestration uses Check to also
// obtain the routing signal.
func (a *PanicAnalyzer) Analyze(ctx context.Context, req *Request) (*Verdict, error) {
	_, verdict, err := a.Check(ctx, req)
	return verdict, err
}

// Check produces both the routing signal and the panic verdict.
//
// A manual trigger on the event is authoritative and costs nothing. The
// pattern fast path covers explicit distress text without a network hop. The
// oracle is consulted last; its unavailability degrades to non-panic rather
// than blocking the pipeline.
func (a *PanicAnalyzer) Check(ctx context.Context, req *Request) (*PanicSignal, *Verdict, error) {
	if req.Event.PanicTrigger {
		return a.triggered("manual", 5), a.panicVerdict(5, 0.99, "panic button pressed"), nil
	}

	if p := a.registry.MatchAny(req.Event.RawText, patterns.CategoryPanicTrigger); p != nil {
		return a.triggered("pattern", p.Severity), a.panicVerdict(p.Severity, 0.9, "distress pattern: "+p.Name), nil
	}

	res, err := a.client.Classify(ctx, req.Event.RawText, oracle.TaskPanic)
	if err != nil {
		// No confirmation in budget means no emergency branch.
		return &PanicSignal{}, nil, ErrUnavailable
	}

	isPanic := false
	for _, tag := range res.Tags {
		if patterns.Category(tag) == patterns.CategoryPanicTrigger {
			isPanic = true
		}
	}
	if !isPanic || res.Severity < severity.High {
		return &PanicSignal{}, a.panicVerdict(severity.None, res.Confidence, "no distress detected"), nil
	}
	return a.triggered("oracle", res.Severity),
		a.panicVerdict(res.Severity, res.Confidence, res.Rationale), nil
}

func (a *PanicAnalyzer) triggered(source string, sev int) *PanicSignal {
	level := 1
	template := panicTemplateMed
	if sev >= severity.Critical {
		level = 2
		template = panicTemplateHigh
	}
	return &PanicSignal{
		Triggered:       true,
		TriggerSource:   source,
		EscalationLevel: level,
		MessageTemplate: template,
	}
}

func (a *PanicAnalyzer) panicVerdict(sev int, conf float64, rationale string) *Verdict {
	v := &Verdict{
		Kind:       KindPanic,
		Severity:   severity.Clamp(sev),
		Confidence: conf,
		Rationale:  rationale,
		ProducedAt: time.Now(),
	}
	if sev >= severity.High {
		v.Categories = []severity.Category{severity.CategoryViolence}
		v.Action = "Contact emergency services immediately and move to a safe location"
	}
	return v
}
