package events

import (
	"sync"
	"testing"

	"github.com/guardline/aegis/pkg/severity"
)

// captureEmitter records alerts for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	alerts []Alert
}

func (c *captureEmitter) Emit(alert Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
}

func TestMultiEmitterFansOut(t *testing.T) {
	a := &captureEmitter{}
	b := &captureEmitter{}
	m := NewMultiEmitter(a, b)

	alert := Alert{
		EventID:  "ev-1",
		Kind:     AlertPanic,
		Severity: 5,
		Category: severity.CategoryViolence,
	}
	m.Emit(alert)

	for i, c := range []*captureEmitter{a, b} {
		c.mu.Lock()
		n := len(c.alerts)
		c.mu.Unlock()
		if n != 1 {
			t.Errorf("emitter %d got %d alerts, want 1", i, n)
		}
	}
}

func TestLogEmitterDoesNotBlock(t *testing.T) {
	// Emit is fire-and-forget; just verify it returns immediately and does
	// not panic on a full struct.
	e := NewLogEmitter()
	e.Emit(Alert{EventID: "ev-1", Kind: AlertThreat, Severity: 4, Message: "test"})
}
