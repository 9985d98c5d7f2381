package meter

import (
	"testing"
	"time"
)

// fakeClock lets tests advance wall-clock time manually.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	// Start exactly on a whole second so interval boundaries are predictable.
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func TestMeter_StopPacketExcludedFromByteAccounting(t *testing.T) {
	clock := newFakeClock()
	m := New(2000, clock.Now)
	m.Start()

	var done bool
	for i := 0; i < 2000; i++ {
		_, done = m.Observe(500)
		if done {
			break
		}
	}

	if !done {
		t.Fatalf("Expected meter to report done after 2000 packets")
	}
	if got := m.PacketsReceived(); got != 2000 {
		t.Errorf("Expected 2000 packets received, got %d", got)
	}
	// The 2000th packet is counted but its 500 bytes never enter the totals.
	if got := m.BytesTotal(); got != 999500 {
		t.Errorf("Expected 999500 bytes total, got %d", got)
	}

	summary := m.Finalize()
	if summary.BytesTotal != 999500 {
		t.Errorf("Summary bytes total = %d, want 999500", summary.BytesTotal)
	}
	if summary.PacketsReceived != 2000 {
		t.Errorf("Summary packets = %d, want 2000", summary.PacketsReceived)
	}
}

func TestMeter_ReadingEmittedAtIntervalBoundary(t *testing.T) {
	clock := newFakeClock()
	m := New(2000, clock.Now)
	m.Start()

	readings, _ := m.Observe(1000)
	if len(readings) != 0 {
		t.Fatalf("Expected no reading before a boundary, got %d", len(readings))
	}

	clock.Advance(1 * time.Second)
	readings, _ = m.Observe(500)
	if len(readings) != 1 {
		t.Fatalf("Expected 1 reading after crossing a boundary, got %d", len(readings))
	}
	if readings[0].Interval != 0 {
		t.Errorf("First reading interval = %d, want 0", readings[0].Interval)
	}
	// Both datagrams land in the first interval: the second arrives before
	// the boundary check runs.
	if readings[0].KBPerSec != 1.5 {
		t.Errorf("First reading = %v KB/s, want 1.5", readings[0].KBPerSec)
	}
}

func TestMeter_MultiSecondGapReportsResetCount(t *testing.T) {
	clock := newFakeClock()
	m := New(2000, clock.Now)
	m.Start()

	m.Observe(2000)
	clock.Advance(3 * time.Second)
	readings, _ := m.Observe(100)

	if len(readings) != 3 {
		t.Fatalf("Expected 3 readings for a 3 second gap, got %d", len(readings))
	}
	// First elapsed second carries the accumulated bytes; the interval
	// counter is reset right after reporting, so later seconds report zero.
	if readings[0].KBPerSec != 2.1 {
		t.Errorf("Reading 0 = %v KB/s, want 2.1", readings[0].KBPerSec)
	}
	for i := 1; i < 3; i++ {
		if readings[i].KBPerSec != 0 {
			t.Errorf("Reading %d = %v KB/s, want 0", i, readings[i].KBPerSec)
		}
		if readings[i].Interval != uint64(i) {
			t.Errorf("Reading %d interval = %d, want %d", i, readings[i].Interval, i)
		}
	}
}

func TestMeter_IntervalCounterMonotone(t *testing.T) {
	clock := newFakeClock()
	m := New(2000, clock.Now)
	m.Start()

	var last uint64
	for i := 0; i < 10; i++ {
		clock.Advance(1 * time.Second)
		readings, _ := m.Observe(100)
		for _, r := range readings {
			if r.Interval < last {
				t.Fatalf("Interval counter went backwards: %d after %d", r.Interval, last)
			}
			last = r.Interval
		}
	}
	if last != 9 {
		t.Errorf("Expected last interval 9, got %d", last)
	}
}

func TestMeter_SubSecondRunUsesDurationOne(t *testing.T) {
	clock := newFakeClock()
	m := New(10, clock.Now)
	m.Start()

	for i := 0; i < 10; i++ {
		if _, done := m.Observe(100); done {
			break
		}
	}

	summary := m.Finalize()
	if summary.IntervalCount != 0 {
		t.Errorf("Expected 0 intervals within the same second, got %d", summary.IntervalCount)
	}
	if summary.DurationSeconds != 1 {
		t.Errorf("Duration = %d, want 1 (divide-by-zero guard)", summary.DurationSeconds)
	}
	// 9 packets of 100 bytes processed (the 10th triggers the stop).
	if summary.AvgKBPerSec != 0.9 {
		t.Errorf("Average = %v KB/s, want 0.9", summary.AvgKBPerSec)
	}
}

func TestMeter_SummaryFoldsPartialInterval(t *testing.T) {
	clock := newFakeClock()
	m := New(2000, clock.Now)
	m.Start()

	m.Observe(1000)
	clock.Advance(1 * time.Second)
	m.Observe(500) // flushes interval 0, leaves 500 bytes pending
	m.Observe(250)

	summary := m.Finalize()
	if summary.BytesFolded != 750 {
		t.Errorf("Folded bytes = %d, want 750", summary.BytesFolded)
	}
	if summary.BytesTotal != 1750 {
		t.Errorf("Total bytes = %d, want 1750", summary.BytesTotal)
	}
	// The folded average divides by intervalCounter+1, not by duration.
	want := 750.0 / 2 / 1000
	if summary.AvgFoldedKBPerSec != want {
		t.Errorf("Folded average = %v, want %v", summary.AvgFoldedKBPerSec, want)
	}
	if summary.AvgKBPerSec != 1.75 {
		t.Errorf("Average = %v KB/s, want 1.75", summary.AvgKBPerSec)
	}
}

func TestMeter_EmptyDatagramAdvancesIntervalsOnly(t *testing.T) {
	clock := newFakeClock()
	m := New(2000, clock.Now)
	m.Start()

	m.Observe(400)
	clock.Advance(1 * time.Second)
	readings, done := m.Observe(0)

	if done {
		t.Fatalf("Empty datagram must not trigger the stop condition")
	}
	if m.PacketsReceived() != 1 {
		t.Errorf("Empty datagram counted as a packet: got %d", m.PacketsReceived())
	}
	if len(readings) != 1 {
		t.Fatalf("Expected the empty datagram to flush the interval, got %d readings", len(readings))
	}
	if readings[0].KBPerSec != 0.4 {
		t.Errorf("Reading = %v KB/s, want 0.4", readings[0].KBPerSec)
	}
}

func TestMeter_OutOfOrderCountersStayZero(t *testing.T) {
	clock := newFakeClock()
	m := New(5, clock.Now)
	m.Start()

	for i := 0; i < 5; i++ {
		if _, done := m.Observe(64); done {
			break
		}
	}

	summary := m.Finalize()
	if summary.PacketsOutOfOrder != 0 || summary.DuplicatedPackets != 0 {
		t.Errorf("Sequencing counters must stay zero, got %d / %d",
			summary.PacketsOutOfOrder, summary.DuplicatedPackets)
	}
}
