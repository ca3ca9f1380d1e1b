// Package events publishes alerts for panic triggers and high-severity
// detections. Emitters are fire-and-forget: alerting must never slow down or
// fail a pipeline run.
package events

import (
	"encoding/json"
	"log"

	"github.com/guardline/aegis/pkg/severity"
)

// AlertKind distinguishes why the alert fired.
type AlertKind string

const (
	AlertPanic  AlertKind = "panic"
	AlertThreat AlertKind = "threat"
)

// Alert is the published payload.
type Alert struct {
	Timestamp string            `json:"timestamp"` // RFC3339 string
	EventID   string            `json:"event_id"`
	SessionID string            `json:"session_id"`
	Kind      AlertKind         `json:"kind"`
	Severity  int               `json:"severity"`
	Category  severity.Category `json:"category"`
	Message   string            `json:"message"` // ALWAYS string ("" if none)
}

// Emitter publishes one alert. Implementations must not block the caller.
type Emitter interface {
	Emit(alert Alert)
}

// LogEmitter writes alerts to the process log. Always available.
type LogEmitter struct{}

func NewLogEmitter() *LogEmitter {
	return &LogEmitter{}
}

func (e *LogEmitter) Emit(alert Alert) {
	go func() {
		b, err := json.Marshal(alert)
		if err != nil {
			log.Printf("[WARN] alert marshal failed: %v", err)
			return
		}
		log.Printf("ALERT: %s", string(b))
	}()
}

// MultiEmitter fans one alert out to several emitters.
type MultiEmitter struct {
	emitters []Emitter
}

func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

func (m *MultiEmitter) Emit(alert Alert) {
	for _, e := range m.emitters {
		e.Emit(alert)
	}
}
