package model

import (
	"time"
)

// Reading is a single one-second throughput figure emitted at an interval
// boundary. Interval n covers the wall-clock second labelled "n-(n+1)".
type Reading struct {
	Interval  uint64    `json:"interval"`
	KBPerSec  float64   `json:"kb_per_sec"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is the end-of-run accounting for one measurement run.
//
// BytesFolded only ever receives the bytes left in the last partial
// interval, and the two average figures use different denominators. Both
// behaviors are part of the fixed output contract, see DESIGN.md.
type Summary struct {
	PacketsReceived   uint64  `json:"packets_received"`
	BytesTotal        uint64  `json:"bytes_total"`
	BytesFolded       uint64  `json:"bytes_folded"`
	PacketsOutOfOrder uint64  `json:"packets_out_of_order"`
	DuplicatedPackets uint64  `json:"duplicated_packets"`
	IntervalCount     uint64  `json:"interval_count"`
	DurationSeconds   uint64  `json:"duration_seconds"`
	AvgKBPerSec       float64 `json:"avg_kb_per_sec"`
	AvgFoldedKBPerSec float64 `json:"avg_folded_kb_per_sec"`
}

// Run is one receiver run as tracked by the collection engine.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Readings  []Reading `json:"readings,omitempty"`
	Summary   *Summary  `json:"summary,omitempty"`
}

// Writer defines a generic interface for persisting measurement data,
// allowing different backends (ClickHouse, text files) to be used
// interchangeably by the engine.
type Writer interface {
	// WriteReadings persists a batch of per-second readings for a run.
	WriteReadings(runID string, readings []Reading) error

	// WriteSummary persists the end-of-run summary for a run.
	WriteSummary(runID string, summary Summary) error

	// Close releases any resources held by the writer.
	Close() error
}
