package export

import (
	"NetGauge/internal/model"
)

// Event types carried on the measurement subject.
const (
	EventReading = "reading"
	EventSummary = "summary"
)

// DefaultSubject is the NATS subject measurement events are published to.
const DefaultSubject = "netgauge.events"

// Envelope wraps one measurement event for transport. Exactly one of Reading
// and Summary is set, according to Type.
type Envelope struct {
	Type    string         `json:"type"`
	RunID   string         `json:"run_id"`
	Reading *model.Reading `json:"reading,omitempty"`
	Summary *model.Summary `json:"summary,omitempty"`
}
