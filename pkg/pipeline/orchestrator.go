package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/guardline/aegis/pkg/analyzer"
	"github.com/guardline/aegis/pkg/events"
	"github.com/guardline/aegis/pkg/evidence"
	"github.com/guardline/aegis/pkg/httputil"
	"github.com/guardline/aegis/pkg/legal"
	"github.com/guardline/aegis/pkg/recall"
	"github.com/guardline/aegis/pkg/session"
	"github.com/guardline/aegis/pkg/severity"
	"github.com/guardline/aegis/pkg/telemetry"
)

// Deps wires the orchestrator. Sessions, Evidence, Legal, the analyzers, and
// the aggregation ranking are required; Emitter, Metrics, Recall, and Pool
// are optional and default to no-ops or unbounded behavior.
type Deps struct {
	Sessions session.Store
	Evidence evidence.Store
	Legal    *legal.Book

	Threat       analyzer.Analyzer
	Manipulation analyzer.Analyzer
	RedFlag      analyzer.Analyzer
	Panic        *analyzer.PanicAnalyzer
	Language     *analyzer.MultilingualAnalyzer
	RealityCheck *analyzer.RealityCheckAnalyzer

	Pool    *httputil.Semaphore
	Emitter events.Emitter
	Metrics *telemetry.Collector
	Recall  *recall.Memory
	Ranking *severity.Ranking

	EvidenceTimeout     time.Duration
	LegalTimeout        time.Duration
	EmergencyMultiplier int
	AlertThreshold      int
	DefaultJurisdiction string
}

// Orchestrator drives the stage machine. Safe for concurrent runs.
type Orchestrator struct {
	deps       Deps
	aggregator *Aggregator
}

// New validates deps and builds an orchestrator.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Sessions == nil || deps.Evidence == nil || deps.Legal == nil {
		return nil, errors.New("pipeline: sessions, evidence, and legal book are required")
	}
	if deps.Threat == nil || deps.Manipulation == nil || deps.RedFlag == nil ||
		deps.Panic == nil || deps.Language == nil || deps.RealityCheck == nil {
		return nil, errors.New("pipeline: all analyzers are required")
	}
	if deps.EmergencyMultiplier < 1 {
		deps.EmergencyMultiplier = 3
	}
	if deps.AlertThreshold < 1 || deps.AlertThreshold > 5 {
		deps.AlertThreshold = severity.High
	}
	if deps.EvidenceTimeout <= 0 {
		deps.EvidenceTimeout = 2 * time.Second
	}
	if deps.LegalTimeout <= 0 {
		deps.LegalTimeout = time.Second
	}
	if deps.DefaultJurisdiction == "" {
		deps.DefaultJurisdiction = legal.GenericJurisdiction
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NewCollector()
	}
	return &Orchestrator{deps: deps, aggregator: NewAggregator(deps.Ranking)}, nil
}

// outcome is one parallel-stage completion.
type outcome struct {
	name    string
	verdict *analyzer.Verdict
	err     error
	latency time.Duration
}

// Analyze runs the full stage machine for one event. The returned error is
// non-nil only for invalid input; every other problem degrades into the
// result.
func (o *Orchestrator) Analyze(ctx context.Context, ev *analyzer.InputEvent) (*AggregateResult, error) {
	if err := ev.Validate(); err != nil {
		o.deps.Metrics.RecordInvalidInput()
		return nil, err
	}
	start := time.Now()

	res := &AggregateResult{
		EventID:   ev.ID,
		SessionID: ev.SessionID,
	}

	// --- Stage: Context ---
	sess, err := o.deps.Sessions.Get(ctx, ev.SessionID)
	if err != nil {
		// Run with an ephemeral context rather than refusing the event.
		log.Printf("[WARN] session store degraded for %s: %v", ev.SessionID, err)
		o.deps.Metrics.RecordStoreFailure()
		res.StoreDegraded = true
		now := time.Now()
		sess = &session.Context{SessionID: ev.SessionID, CreatedAt: now, UpdatedAt: now}
	}
	req := &analyzer.Request{Event: ev, Session: sess}

	// --- Stage: Language ---
	langStart := time.Now()
	langCtx, cancelLang := context.WithTimeout(ctx, o.deps.Language.Timeout())
	lang, langVerdict, langErr := o.deps.Language.Resolve(langCtx, req)
	cancelLang()
	o.deps.Metrics.RecordAnalyzer("multilingual", time.Since(langStart), 0, langErr != nil)
	if langErr != nil {
		// The run continues on the fallback language, but the failed
		// detection is visible to callers.
		res.Degraded = append(res.Degraded, "multilingual")
	}
	req.Language = lang
	res.Language = lang
	res.Verdicts = append(res.Verdicts, *langVerdict)

	// --- Stage: Panic ---
	panicStart := time.Now()
	panicCtx, cancelPanic := context.WithTimeout(ctx, o.deps.Panic.Timeout())
	sig, panicVerdict, panicErr := o.deps.Panic.Check(panicCtx, req)
	cancelPanic()
	o.deps.Metrics.RecordAnalyzer("panic", time.Since(panicStart), verdictSeverity(panicVerdict), panicErr != nil)
	if panicErr != nil {
		res.Degraded = append(res.Degraded, "panic")
	}
	if panicVerdict != nil {
		res.Verdicts = append(res.Verdicts, *panicVerdict)
	}
	res.Panic = sig

	// --- Stage: Branch ---
	// Decided before any parallel work is scheduled; the emergency branch
	// must not spend its budget on analyzers whose answers it will not use.
	res.Emergency = sig != nil && sig.Triggered

	// --- Stage: Parallel scoring ---
	if res.Emergency {
		res.Skipped = append(res.Skipped, "threat", "manipulation", "redflag")
	} else {
		o.runParallel(ctx, req, res)
	}

	// --- Stage: Evidence ---
	o.appendEvidence(ctx, ev, res)

	// --- Stage: Legal ---
	o.lookupLegal(ctx, ev, res)

	// --- Stage: RealityCheck ---
	if res.Emergency {
		res.Skipped = append(res.Skipped, "realitycheck")
	} else {
		o.runRealityCheck(ctx, req, res)
	}

	// --- Stage: Finalize ---
	o.finalize(ctx, ev, sess, res)
	res.LatencyMs = time.Since(start).Milliseconds()
	return res, nil
}

// runParallel fans the three scoring analyzers out and joins all outcomes.
// Each goroutine reports exactly once on a buffered channel, so the join
// never leaks even when budgets expire.
func (o *Orchestrator) runParallel(ctx context.Context, req *analyzer.Request, res *AggregateResult) {
	analyzers := []analyzer.Analyzer{o.deps.Threat, o.deps.Manipulation, o.deps.RedFlag}

	// The stage as a whole is bounded by the largest analyzer budget.
	var stageBudget time.Duration
	for _, a := range analyzers {
		if a.Timeout() > stageBudget {
			stageBudget = a.Timeout()
		}
	}
	stageCtx, cancel := context.WithTimeout(ctx, stageBudget)
	defer cancel()

	results := make(chan outcome, len(analyzers))
	for _, a := range analyzers {
		go func(a analyzer.Analyzer) {
			name := a.Kind().String()
			started := time.Now()

			if o.deps.Pool != nil {
				if err := o.deps.Pool.Acquire(stageCtx); err != nil {
					results <- outcome{name: name, err: err, latency: time.Since(started)}
					return
				}
				defer o.deps.Pool.Release()
			}

			callCtx, cancelCall := context.WithTimeout(stageCtx, a.Timeout())
			v, err := a.Analyze(callCtx, req)
			cancelCall()
			results <- outcome{name: name, verdict: v, err: err, latency: time.Since(started)}
		}(a)
	}

	for range analyzers {
		out := <-results
		o.deps.Metrics.RecordAnalyzer(out.name, out.latency, verdictSeverity(out.verdict), out.err != nil)
		if out.err != nil {
			res.Degraded = append(res.Degraded, out.name)
			continue
		}
		res.Verdicts = append(res.Verdicts, *out.verdict)
	}
}

// appendEvidence persists the run snapshot. On the emergency branch the
// append runs on a detached context with a widened budget so caller
// cancellation cannot lose the record.
func (o *Orchestrator) appendEvidence(ctx context.Context, ev *analyzer.InputEvent, res *AggregateResult) {
	budget := o.deps.EvidenceTimeout
	evCtx := ctx
	if res.Emergency {
		budget *= time.Duration(o.deps.EmergencyMultiplier)
		evCtx = context.WithoutCancel(ctx)
	}
	evCtx, cancel := context.WithTimeout(evCtx, budget)
	defer cancel()

	rec := &evidence.Record{
		EventID:   ev.ID,
		SessionID: ev.SessionID,
		Timestamp: ev.Timestamp,
		RawText:   ev.RawText,
		Verdicts:  res.Verdicts,
		Panic:     res.Panic,
	}
	if ev.MediaRef != "" {
		rec.MediaRefs = []string{ev.MediaRef}
	}

	started := time.Now()
	err := o.deps.Evidence.Append(evCtx, rec)
	o.deps.Metrics.RecordAnalyzer("evidence", time.Since(started), 0, err != nil)
	if err != nil {
		log.Printf("[WARN] evidence append failed for %s: %v", ev.ID, err)
		o.deps.Metrics.RecordStoreFailure()
		res.Degraded = append(res.Degraded, "evidence")
		return
	}
	res.EvidenceWritten = true
}

// lookupLegal resolves guidance for the dominant category so far. Absence of
// guidance is a valid outcome, not degradation.
func (o *Orchestrator) lookupLegal(ctx context.Context, ev *analyzer.InputEvent, res *AggregateResult) {
	budget := o.deps.LegalTimeout
	if res.Emergency {
		budget *= time.Duration(o.deps.EmergencyMultiplier)
	}
	legalCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	jurisdiction := ev.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = o.deps.DefaultJurisdiction
	}
	_, dominant := o.aggregator.Aggregate(res.Verdicts)

	started := time.Now()
	g, err := o.deps.Legal.Lookup(legalCtx, jurisdiction, dominant)
	failed := err != nil && !errors.Is(err, legal.ErrNotFound)
	o.deps.Metrics.RecordAnalyzer("legal", time.Since(started), 0, failed)
	if err != nil {
		if failed {
			log.Printf("[WARN] legal lookup failed for %s: %v", ev.ID, err)
			res.Degraded = append(res.Degraded, "legal")
		}
		return
	}
	res.Legal = g
	res.Verdicts = append(res.Verdicts, analyzer.Verdict{
		Kind:       analyzer.KindLegal,
		Confidence: 1,
		Rationale:  fmt.Sprintf("guidance for %s/%s", g.Jurisdiction, g.Category),
		ProducedAt: time.Now(),
	})
}

func (o *Orchestrator) runRealityCheck(ctx context.Context, req *analyzer.Request, res *AggregateResult) {
	rcCtx, cancel := context.WithTimeout(ctx, o.deps.RealityCheck.Timeout())
	defer cancel()

	started := time.Now()
	v, err := o.deps.RealityCheck.Analyze(rcCtx, req)
	o.deps.Metrics.RecordAnalyzer("realitycheck", time.Since(started), 0, err != nil)
	if err != nil {
		res.Degraded = append(res.Degraded, "realitycheck")
		return
	}
	res.Verdicts = append(res.Verdicts, *v)
	res.RealityCheck = v.Action

	// Enrich with similar past cases when recall is wired.
	if o.deps.Recall != nil {
		if cases, err := o.deps.Recall.Similar(rcCtx, req.Event.RawText, 3); err == nil {
			res.SimilarCases = cases
		}
	}
}

// finalize aggregates, updates the session, and emits alerts. Always runs.
func (o *Orchestrator) finalize(ctx context.Context, ev *analyzer.InputEvent, sess *session.Context, res *AggregateResult) {
	res.OverallSeverity, res.DominantCategory = o.aggregator.Aggregate(res.Verdicts)
	res.Escalating = sess.Escalating()

	if err := o.deps.Sessions.Append(ctx, ev.SessionID, ev.ID, res.OverallSeverity); err != nil {
		log.Printf("[WARN] session append failed for %s: %v", ev.SessionID, err)
		o.deps.Metrics.RecordStoreFailure()
		res.StoreDegraded = true
	}

	if o.deps.Recall != nil && res.OverallSeverity >= severity.High {
		if err := o.deps.Recall.Remember(ctx, ev.ID, ev.RawText, res.DominantCategory, res.OverallSeverity); err != nil {
			log.Printf("[WARN] recall remember failed for %s: %v", ev.ID, err)
		}
	}

	if o.deps.Emitter != nil {
		if res.Emergency {
			o.emit(ev, res, events.AlertPanic)
		} else if res.OverallSeverity >= o.deps.AlertThreshold {
			o.emit(ev, res, events.AlertThreat)
		}
	}

	o.deps.Metrics.RecordRun(res.OverallSeverity, res.Emergency)
}

func (o *Orchestrator) emit(ev *analyzer.InputEvent, res *AggregateResult, kind events.AlertKind) {
	msg := ""
	if res.Panic != nil {
		msg = res.Panic.MessageTemplate
	}
	o.deps.Emitter.Emit(events.Alert{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		EventID:   ev.ID,
		SessionID: ev.SessionID,
		Kind:      kind,
		Severity:  res.OverallSeverity,
		Category:  res.DominantCategory,
		Message:   msg,
	})
	o.deps.Metrics.RecordAlert()
}

func verdictSeverity(v *analyzer.Verdict) int {
	if v == nil {
		return 0
	}
	return v.Severity
}
