// Package export moves measurement events between the receiver and the
// collection engine over NATS, as JSON-encoded envelopes.
package export

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"NetGauge/internal/model"
)

// Publisher publishes the events of a single run to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
	runID   string
}

// NewPublisher connects to NATS and returns a publisher for the given run.
func NewPublisher(url, subject, runID string) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", url)
	return &Publisher{nc: nc, subject: subject, runID: runID}, nil
}

// PublishReading publishes one per-second reading.
func (p *Publisher) PublishReading(r model.Reading) error {
	return p.publish(Envelope{Type: EventReading, RunID: p.runID, Reading: &r})
}

// PublishSummary publishes the end-of-run summary.
func (p *Publisher) PublishSummary(s model.Summary) error {
	return p.publish(Envelope{Type: EventSummary, RunID: p.runID, Summary: &s})
}

func (p *Publisher) publish(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
	return nil
}
