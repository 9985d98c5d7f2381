package engine

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"NetGauge/internal/config"
	"NetGauge/internal/model"
)

// TextWriter appends readings and summaries to a plain log file. It is the
// lightweight alternative to ClickHouse for single-host runs.
type TextWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// NewTextWriter opens (or creates) the log file at cfg.Path.
func NewTextWriter(cfg config.TextConfig) (model.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", cfg.Path, err)
	}
	return &TextWriter{file: file, writer: bufio.NewWriter(file)}, nil
}

// WriteReadings appends one line per reading.
func (w *TextWriter) WriteReadings(runID string, readings []model.Reading) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, r := range readings {
		line := fmt.Sprintf("%s reading run=%s interval=%d kbps=%.1f\n",
			r.Timestamp.Format("2006-01-02 15:04:05.000"), runID, r.Interval, r.KBPerSec)
		if _, err := w.writer.WriteString(line); err != nil {
			return fmt.Errorf("failed to write reading: %w", err)
		}
	}
	return w.writer.Flush()
}

// WriteSummary appends the end-of-run summary as a single line.
func (w *TextWriter) WriteSummary(runID string, s model.Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line := fmt.Sprintf("%s summary run=%s packets=%d bytes=%d intervals=%d duration=%d avg_kbps=%.1f\n",
		time.Now().Format("2006-01-02 15:04:05.000"), runID,
		s.PacketsReceived, s.BytesTotal, s.IntervalCount, s.DurationSeconds, s.AvgKBPerSec)
	if _, err := w.writer.WriteString(line); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return w.writer.Flush()
}

// Close flushes and closes the log file.
func (w *TextWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Flush()
	return w.file.Close()
}
