// Package api serves the collection engine's in-memory run view over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"NetGauge/internal/engine/store"
)

// Server exposes the store through a gorilla/mux router.
type Server struct {
	store      *store.Store
	httpServer *http.Server
}

// NewServer builds a Server listening on addr, backed by st.
func NewServer(addr string, st *store.Store) *Server {
	s := &Server{store: st}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	return s
}

// Router returns the route table so tests can drive handlers directly.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/runs", s.listRunsHandler).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}", s.runHandler).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}/readings", s.runReadingsHandler).Methods("GET")
	return r
}

// Start serves requests in the background until Stop is called.
func (s *Server) Start() {
	go func() {
		log.Printf("API server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", s.httpServer.Addr, err)
		}
	}()
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// listRunsHandler returns every known run, most recently updated first.
func (s *Server) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Runs())
}

// runHandler returns one run with its summary, if present.
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	run, ok := s.store.Run(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, run)
}

// runReadingsHandler returns the per-second readings of one run.
func (s *Server) runReadingsHandler(w http.ResponseWriter, r *http.Request) {
	run, ok := s.store.Run(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, run.Readings)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
