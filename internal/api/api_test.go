package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NetGauge/internal/engine/store"
	"NetGauge/internal/model"
)

func seededStore() *store.Store {
	st := store.New()
	now := time.Now()
	st.AddReading("run-1", model.Reading{Interval: 0, KBPerSec: 500, Timestamp: now})
	st.AddReading("run-1", model.Reading{Interval: 1, KBPerSec: 250, Timestamp: now.Add(time.Second)})
	st.SetSummary("run-1", model.Summary{PacketsReceived: 2000, BytesTotal: 999500})
	st.AddReading("run-2", model.Reading{Interval: 0, KBPerSec: 100, Timestamp: now.Add(time.Minute)})
	return st
}

func get(t *testing.T, st *store.Store, path string) *httptest.ResponseRecorder {
	t.Helper()
	s := NewServer(":0", st)
	req := httptest.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestListRuns(t *testing.T) {
	rr := get(t, seededStore(), "/api/v1/runs")

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rr.Code)
	}
	var runs []model.Run
	if err := json.Unmarshal(rr.Body.Bytes(), &runs); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Errorf("Expected most recently updated run first, got %q", runs[0].ID)
	}
}

func TestGetRun(t *testing.T) {
	rr := get(t, seededStore(), "/api/v1/runs/run-1")

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rr.Code)
	}
	var run model.Run
	if err := json.Unmarshal(rr.Body.Bytes(), &run); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if run.ID != "run-1" {
		t.Errorf("Run ID = %q, want run-1", run.ID)
	}
	if run.Summary == nil || run.Summary.PacketsReceived != 2000 {
		t.Errorf("Summary missing or wrong: %+v", run.Summary)
	}
}

func TestGetRun_Unknown(t *testing.T) {
	rr := get(t, seededStore(), "/api/v1/runs/nope")

	if rr.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rr.Code)
	}
}

func TestGetRunReadings(t *testing.T) {
	rr := get(t, seededStore(), "/api/v1/runs/run-1/readings")

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rr.Code)
	}
	var readings []model.Reading
	if err := json.Unmarshal(rr.Body.Bytes(), &readings); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(readings) != 2 || readings[1].Interval != 1 {
		t.Errorf("Unexpected readings: %+v", readings)
	}
}

func TestGetRunReadings_Unknown(t *testing.T) {
	rr := get(t, seededStore(), "/api/v1/runs/nope/readings")

	if rr.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rr.Code)
	}
}
