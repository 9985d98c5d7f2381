package engine

import (
	"sync"
	"testing"
	"time"

	"NetGauge/internal/engine/store"
	"NetGauge/internal/export"
	"NetGauge/internal/model"
)

// fakeWriter captures what the engine flushes.
type fakeWriter struct {
	mu        sync.Mutex
	readings  map[string][]model.Reading
	summaries map[string]model.Summary
	closed    bool
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		readings:  make(map[string][]model.Reading),
		summaries: make(map[string]model.Summary),
	}
}

func (w *fakeWriter) WriteReadings(runID string, rs []model.Reading) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.readings[runID] = append(w.readings[runID], rs...)
	return nil
}

func (w *fakeWriter) WriteSummary(runID string, s model.Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.summaries[runID] = s
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func newTestEngine(writer model.Writer) *Engine {
	return &Engine{
		store:         store.New(),
		writers:       []model.Writer{writer},
		eventChannel:  make(chan export.Envelope, 64),
		numWorkers:    2,
		flushInterval: 10 * time.Millisecond,
		done:          make(chan struct{}),
	}
}

func TestEngine_WorkersApplyEventsToStore(t *testing.T) {
	writer := newFakeWriter()
	e := newTestEngine(writer)

	e.workerWg.Add(e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker()
	}

	reading := model.Reading{Interval: 0, KBPerSec: 512, Timestamp: time.Now()}
	summary := model.Summary{PacketsReceived: 2000, BytesTotal: 999500}
	e.eventChannel <- export.Envelope{Type: export.EventReading, RunID: "run-1", Reading: &reading}
	e.eventChannel <- export.Envelope{Type: export.EventSummary, RunID: "run-1", Summary: &summary}
	e.eventChannel <- export.Envelope{Type: "bogus", RunID: "run-1"}

	close(e.eventChannel)
	e.workerWg.Wait()

	run, ok := e.Store().Run("run-1")
	if !ok {
		t.Fatalf("Run was not created from events")
	}
	if len(run.Readings) != 1 {
		t.Errorf("Expected 1 reading in store, got %d", len(run.Readings))
	}
	if run.Summary == nil || run.Summary.PacketsReceived != 2000 {
		t.Errorf("Summary not applied, got %+v", run.Summary)
	}
}

func TestEngine_LateEventAfterShutdownIsDropped(t *testing.T) {
	e := newTestEngine(newFakeWriter())

	e.workerWg.Add(e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker()
	}

	reading := model.Reading{Interval: 0, KBPerSec: 512, Timestamp: time.Now()}
	e.enqueue(export.Envelope{Type: export.EventReading, RunID: "run-1", Reading: &reading})

	// The shutdown sequence: mark stopped under the write lock, then close
	// the channel and drain the workers.
	e.pubMu.Lock()
	e.stopped = true
	e.pubMu.Unlock()
	close(e.eventChannel)
	e.workerWg.Wait()

	// A subscriber callback firing after shutdown must be dropped, not
	// panic on the closed channel.
	late := model.Reading{Interval: 1, KBPerSec: 256, Timestamp: time.Now()}
	e.enqueue(export.Envelope{Type: export.EventReading, RunID: "run-1", Reading: &late})

	run, ok := e.Store().Run("run-1")
	if !ok {
		t.Fatalf("Run was not created from the first event")
	}
	if len(run.Readings) != 1 {
		t.Errorf("Expected 1 reading after shutdown, got %d", len(run.Readings))
	}
}

func TestEngine_FlushHandsBatchesToWriters(t *testing.T) {
	writer := newFakeWriter()
	e := newTestEngine(writer)

	e.store.AddReading("run-1", model.Reading{Interval: 0, KBPerSec: 100})
	e.store.AddReading("run-1", model.Reading{Interval: 1, KBPerSec: 200})
	e.store.SetSummary("run-1", model.Summary{PacketsReceived: 50})

	e.flush()

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if len(writer.readings["run-1"]) != 2 {
		t.Errorf("Expected 2 flushed readings, got %d", len(writer.readings["run-1"]))
	}
	if writer.summaries["run-1"].PacketsReceived != 50 {
		t.Errorf("Summary not flushed, got %+v", writer.summaries["run-1"])
	}

	// A second flush with nothing pending must not write again.
	before := len(writer.readings["run-1"])
	writer.mu.Unlock()
	e.flush()
	writer.mu.Lock()
	if len(writer.readings["run-1"]) != before {
		t.Errorf("Empty flush wrote additional readings")
	}
}
