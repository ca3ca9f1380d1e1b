// Package telemetry collects in-process pipeline metrics: run counts, severity
// distribution, per-analyzer latency and degradation. All counters are process
// local; Snapshot() serves the /metrics endpoint.
package telemetry

import (
	"sync"
	"time"
)

// AnalyzerStats accumulates per-analyzer observations.
type AnalyzerStats struct {
	Runs        int64   `json:"runs"`
	Degraded    int64   `json:"degraded"`
	TotalMs     int64   `json:"total_ms"`
	MaxMs       int64   `json:"max_ms"`
	AvgMs       float64 `json:"avg_ms"`
	LastSeverity int    `json:"last_severity"`
}

// Collector is a mutex-guarded metrics sink. The zero value is not usable;
// create one with NewCollector.
type Collector struct {
	mu            sync.Mutex
	startedAt     time.Time
	runs          int64
	invalidInputs int64
	emergencies   int64
	storeFailures int64
	alertsEmitted int64
	severityCount [6]int64 // index = overall severity 0..5
	analyzers     map[string]*AnalyzerStats
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		startedAt: time.Now(),
		analyzers: make(map[string]*AnalyzerStats),
	}
}

// RecordRun counts one completed pipeline run and its overall severity.
func (c *Collector) RecordRun(overallSeverity int, emergency bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
	if overallSeverity >= 0 && overallSeverity < len(c.severityCount) {
		c.severityCount[overallSeverity]++
	}
	if emergency {
		c.emergencies++
	}
}

// RecordInvalidInput counts a request rejected before the pipeline ran.
func (c *Collector) RecordInvalidInput() {
	c.mu.Lock()
	c.invalidInputs++
	c.mu.Unlock()
}

// RecordStoreFailure counts a degraded store interaction.
func (c *Collector) RecordStoreFailure() {
	c.mu.Lock()
	c.storeFailures++
	c.mu.Unlock()
}

// RecordAlert counts an emitted alert.
func (c *Collector) RecordAlert() {
	c.mu.Lock()
	c.alertsEmitted++
	c.mu.Unlock()
}

// RecordAnalyzer records one analyzer invocation.
func (c *Collector) RecordAnalyzer(name string, latency time.Duration, severity int, degraded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.analyzers[name]
	if !ok {
		st = &AnalyzerStats{}
		c.analyzers[name] = st
	}
	st.Runs++
	if degraded {
		st.Degraded++
	} else {
		st.LastSeverity = severity
	}
	ms := latency.Milliseconds()
	st.TotalMs += ms
	if ms > st.MaxMs {
		st.MaxMs = ms
	}
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	UptimeSeconds float64                   `json:"uptime_seconds"`
	Runs          int64                     `json:"runs"`
	InvalidInputs int64                     `json:"invalid_inputs"`
	Emergencies   int64                     `json:"emergencies"`
	StoreFailures int64                     `json:"store_failures"`
	AlertsEmitted int64                     `json:"alerts_emitted"`
	SeverityCount map[int]int64             `json:"severity_count"`
	Analyzers     map[string]AnalyzerStats  `json:"analyzers"`
}

// Snapshot returns a copy of the current counters, safe to marshal.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startedAt).Seconds(),
		Runs:          c.runs,
		InvalidInputs: c.invalidInputs,
		Emergencies:   c.emergencies,
		StoreFailures: c.storeFailures,
		AlertsEmitted: c.alertsEmitted,
		SeverityCount: make(map[int]int64, len(c.severityCount)),
		Analyzers:     make(map[string]AnalyzerStats, len(c.analyzers)),
	}
	for sev, n := range c.severityCount {
		if n > 0 {
			snap.SeverityCount[sev] = n
		}
	}
	for name, st := range c.analyzers {
		cp := *st
		if cp.Runs > 0 {
			cp.AvgMs = float64(cp.TotalMs) / float64(cp.Runs)
		}
		snap.Analyzers[name] = cp
	}
	return snap
}
