package engine

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"NetGauge/internal/config"
	"NetGauge/internal/model"
)

// GobWriter handles writing measurement batches to disk in gob format, one
// timestamped directory per flush. It implements the model.Writer interface.
type GobWriter struct {
	rootPath string
}

// summaryData is the sidecar metadata written next to each summary.
type summaryData struct {
	RunID     string `json:"run_id"`
	Packets   uint64 `json:"packets"`
	Bytes     uint64 `json:"bytes"`
	Timestamp string `json:"timestamp"`
}

// NewGobWriter creates a new writer rooted at cfg.Path.
func NewGobWriter(cfg config.GobConfig) (model.Writer, error) {
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create gob storage directory: %w", err)
	}
	return &GobWriter{rootPath: cfg.Path}, nil
}

// WriteReadings serializes a batch of readings to a timestamped run directory.
func (w *GobWriter) WriteReadings(runID string, readings []model.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	runDir, err := w.ensureRunDir(runID)
	if err != nil {
		return err
	}

	filePath := filepath.Join(runDir, "readings.gob")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create readings file '%s': %w", filePath, err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(readings); err != nil {
		return fmt.Errorf("failed to encode readings to gob for file '%s': %w", filePath, err)
	}

	return nil
}

// WriteSummary serializes the run summary plus a JSON metadata sidecar.
func (w *GobWriter) WriteSummary(runID string, s model.Summary) error {
	runDir, err := w.ensureRunDir(runID)
	if err != nil {
		return err
	}

	filePath := filepath.Join(runDir, "summary.gob")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create summary file '%s': %w", filePath, err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary to gob for file '%s': %w", filePath, err)
	}

	meta := summaryData{
		RunID:     runID,
		Packets:   s.PacketsReceived,
		Bytes:     s.BytesTotal,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	metaPath := filepath.Join(runDir, "summary.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return fmt.Errorf("failed to create summary metadata file: %w", err)
	}
	defer metaFile.Close()

	jsonEncoder := json.NewEncoder(metaFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(meta); err != nil {
		return fmt.Errorf("failed to encode summary metadata to json: %w", err)
	}

	return nil
}

// Close is a no-op; every flush opens and closes its own files.
func (w *GobWriter) Close() error {
	return nil
}

func (w *GobWriter) ensureRunDir(runID string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	runDir := filepath.Join(w.rootPath, timestamp, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	return runDir, nil
}
