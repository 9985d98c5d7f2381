// Package query reads stored measurement data back out of ClickHouse for the
// API server.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"NetGauge/internal/config"
	"NetGauge/internal/model"
)

// ErrRunNotFound is returned when a run ID has no stored summary.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is one row of the run_summaries table.
type RunSummary struct {
	RunID           string    `json:"run_id"`
	PacketsReceived uint64    `json:"packets_received"`
	BytesTotal      uint64    `json:"bytes_total"`
	IntervalCount   uint64    `json:"interval_count"`
	DurationSeconds uint64    `json:"duration_seconds"`
	AvgKBPerSec     float64   `json:"avg_kb_per_sec"`
	Timestamp       time.Time `json:"timestamp"`
}

// Querier defines the interface for querying measurement data.
type Querier interface {
	ListRuns(ctx context.Context, since time.Time) ([]RunSummary, error)
	RunSummary(ctx context.Context, runID string) (RunSummary, error)
	RunReadings(ctx context.Context, runID string) ([]model.Reading, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (clickhouse.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// ListRuns returns the stored run summaries, newest first. A zero since
// returns every run.
func (q *clickhouseQuerier) ListRuns(ctx context.Context, since time.Time) ([]RunSummary, error) {
	query := `
		SELECT
			RunID,
			PacketsReceived,
			BytesTotal,
			IntervalCount,
			DurationSeconds,
			AvgKBPerSec,
			Timestamp
		FROM run_summaries
	`
	args := []interface{}{}
	if !since.IsZero() {
		query += " WHERE Timestamp >= ?"
		args = append(args, since)
	}
	query += " ORDER BY Timestamp DESC"

	rows, err := q.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.PacketsReceived, &s.BytesTotal,
			&s.IntervalCount, &s.DurationSeconds, &s.AvgKBPerSec, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

// RunSummary returns the stored summary of one run, the most recent row if
// several share the ID. It returns ErrRunNotFound for unknown IDs.
func (q *clickhouseQuerier) RunSummary(ctx context.Context, runID string) (RunSummary, error) {
	query := `
		SELECT
			RunID,
			PacketsReceived,
			BytesTotal,
			IntervalCount,
			DurationSeconds,
			AvgKBPerSec,
			Timestamp
		FROM run_summaries
		WHERE RunID = ?
		ORDER BY Timestamp DESC
		LIMIT 1
	`

	rows, err := q.conn.Query(ctx, query, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return RunSummary{}, ErrRunNotFound
	}
	var s RunSummary
	if err := rows.Scan(&s.RunID, &s.PacketsReceived, &s.BytesTotal,
		&s.IntervalCount, &s.DurationSeconds, &s.AvgKBPerSec, &s.Timestamp); err != nil {
		return RunSummary{}, fmt.Errorf("failed to scan run summary: %w", err)
	}
	return s, nil
}

// RunReadings returns the per-second readings of one run in interval order.
func (q *clickhouseQuerier) RunReadings(ctx context.Context, runID string) ([]model.Reading, error) {
	query := `
		SELECT
			Interval,
			KBPerSec,
			Timestamp
		FROM throughput_readings
		WHERE RunID = ?
		ORDER BY Interval ASC
	`

	rows, err := q.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var readings []model.Reading
	for rows.Next() {
		var r model.Reading
		if err := rows.Scan(&r.Interval, &r.KBPerSec, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, r)
	}

	return readings, nil
}
