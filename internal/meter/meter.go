// Package meter implements the interval throughput accumulator: a
// single-owner set of counters driven by one blocking receive loop, bucketing
// received bytes into one-second wall-clock intervals.
package meter

import (
	"time"

	"NetGauge/internal/model"
)

// StopThreshold is the fixed packet count at which a measurement run ends.
const StopThreshold = 2000

// Clock returns the current wall-clock time. Injected so tests can drive
// interval boundaries deterministically.
type Clock func() time.Time

// Meter accumulates per-interval and per-run byte counts for one measurement
// run. It is not safe for concurrent use; exactly one loop owns it.
//
// Elapsed seconds are only derived at datagram-arrival points. There is no
// background timer: if no datagram arrives, no interval is ever reported.
type Meter struct {
	clock     Clock
	threshold uint64

	packetsReceived   uint64
	bytesInInterval   uint64
	bytesTotal        uint64
	packetsOutOfOrder uint64
	duplicatedPackets uint64
	intervalCounter   uint64

	// secondsPassed is the last whole-second boundary already reported,
	// as a Unix timestamp.
	secondsPassed int64
	started       bool
}

// New creates a Meter that stops after threshold packets and reads wall-clock
// time from clock. A nil clock means time.Now.
func New(threshold uint64, clock Clock) *Meter {
	if clock == nil {
		clock = time.Now
	}
	return &Meter{clock: clock, threshold: threshold}
}

// Start anchors the first interval boundary at the current whole second.
func (m *Meter) Start() {
	m.secondsPassed = m.clock().Unix()
	m.started = true
}

// Observe processes one received datagram of n bytes. It returns the readings
// for any whole seconds that have elapsed since the last arrival, and
// done=true once the stop threshold is reached.
//
// Two behaviors are part of the output contract:
//   - the datagram that reaches the threshold is counted in packetsReceived
//     but its bytes never enter the interval or total accounting;
//   - when more than one second elapses during a single wait, the first
//     elapsed second reports the accumulated interval bytes and every later
//     one reports the already-reset count of zero.
//
// A zero-length datagram does not count as a received packet but still
// advances the interval bookkeeping.
func (m *Meter) Observe(n int) (readings []model.Reading, done bool) {
	if !m.started {
		m.Start()
	}

	if n > 0 {
		m.packetsReceived++
		if m.packetsReceived == m.threshold {
			return nil, true
		}
	}

	m.bytesInInterval += uint64(n)
	m.bytesTotal += uint64(n)

	now := m.clock()
	for m.secondsPassed < now.Unix() {
		readings = append(readings, model.Reading{
			Interval:  m.intervalCounter,
			KBPerSec:  float64(m.bytesInInterval) / 1000,
			Timestamp: now,
		})
		m.intervalCounter++
		m.bytesInInterval = 0
		m.secondsPassed++
	}

	return readings, false
}

// Finalize folds the bytes of the last partial interval and computes the
// end-of-run summary. It must be called exactly once, after the loop exits.
func (m *Meter) Finalize() model.Summary {
	bytesFolded := m.bytesInInterval

	duration := m.intervalCounter
	if duration < 1 {
		duration = 1 // guards divide-by-zero on sub-second runs
	}

	return model.Summary{
		PacketsReceived:   m.packetsReceived,
		BytesTotal:        m.bytesTotal,
		BytesFolded:       bytesFolded,
		PacketsOutOfOrder: m.packetsOutOfOrder,
		DuplicatedPackets: m.duplicatedPackets,
		IntervalCount:     m.intervalCounter,
		DurationSeconds:   duration,
		AvgKBPerSec:       (float64(m.bytesTotal) / 1000) / float64(duration),
		AvgFoldedKBPerSec: float64(bytesFolded) / float64(m.intervalCounter+1) / 1000,
	}
}

// PacketsReceived reports the number of datagrams counted so far.
func (m *Meter) PacketsReceived() uint64 {
	return m.packetsReceived
}

// BytesTotal reports the bytes processed into accounting so far.
func (m *Meter) BytesTotal() uint64 {
	return m.bytesTotal
}
