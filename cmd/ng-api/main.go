package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"NetGauge/internal/config"
	"NetGauge/internal/query"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Find the first enabled ClickHouse writer config.
	var chCfg *config.ClickHouseConfig
	for _, writerDef := range cfg.Engine.Writers {
		if writerDef.Enabled && writerDef.Type == "clickhouse" {
			chCfg = &writerDef.ClickHouse
			break
		}
	}

	if chCfg == nil {
		log.Fatalf("No enabled ClickHouse writer found in config. API server cannot start.")
	}

	querier, err := query.NewClickHouseQuerier(*chCfg)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	r := mux.NewRouter()

	apiHandler := &APIHandler{querier: querier}

	r.HandleFunc("/api/v1/runs", apiHandler.listRunsHandler).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}", apiHandler.runSummaryHandler).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}/readings", apiHandler.runReadingsHandler).Methods("GET")

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier query.Querier
}

// listRunsHandler returns the stored run summaries, optionally limited to
// those at or after the ?since=RFC3339 timestamp.
func (h *APIHandler) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid 'since' timestamp, expected RFC3339", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	runs, err := h.querier.ListRuns(r.Context(), since)
	if err != nil {
		log.Printf("Error listing runs: %v", err)
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, runs)
}

// runSummaryHandler returns the stored summary of one run.
func (h *APIHandler) runSummaryHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	summary, err := h.querier.RunSummary(r.Context(), runID)
	if errors.Is(err, query.ErrRunNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error fetching summary for run '%s': %v", runID, err)
		http.Error(w, "failed to fetch run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, summary)
}

// runReadingsHandler returns the per-second readings of one run.
func (h *APIHandler) runReadingsHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	readings, err := h.querier.RunReadings(r.Context(), runID)
	if err != nil {
		log.Printf("Error fetching readings for run '%s': %v", runID, err)
		http.Error(w, "failed to fetch readings", http.StatusInternalServerError)
		return
	}
	if len(readings) == 0 {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	writeJSON(w, readings)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
