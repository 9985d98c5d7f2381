package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"NetGauge/internal/config"
	"NetGauge/internal/model"
)

const createReadingsTableStatement = `
CREATE TABLE IF NOT EXISTS throughput_readings (
    RunID       String,
    Interval    UInt64,
    KBPerSec    Float64,
    Timestamp   DateTime
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (RunID, Interval);
`

const createSummariesTableStatement = `
CREATE TABLE IF NOT EXISTS run_summaries (
    RunID             String,
    PacketsReceived   UInt64,
    BytesTotal        UInt64,
    BytesFolded       UInt64,
    PacketsOutOfOrder UInt64,
    DuplicatedPackets UInt64,
    IntervalCount     UInt64,
    DurationSeconds   UInt64,
    AvgKBPerSec       Float64,
    Timestamp         DateTime
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (RunID, Timestamp);
`

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures both tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createReadingsTableStatement, createSummariesTableStatement} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseWriter{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
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

// WriteReadings inserts a batch of per-second readings.
func (w *ClickHouseWriter) WriteReadings(runID string, readings []model.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO throughput_readings")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, r := range readings {
		if err := batch.Append(runID, r.Interval, r.KBPerSec, r.Timestamp); err != nil {
			return fmt.Errorf("failed to append reading to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d readings to ClickHouse for run '%s'", len(readings), runID)
	return nil
}

// WriteSummary inserts the end-of-run summary row.
func (w *ClickHouseWriter) WriteSummary(runID string, s model.Summary) error {
	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO run_summaries")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	err = batch.Append(
		runID,
		s.PacketsReceived,
		s.BytesTotal,
		s.BytesFolded,
		s.PacketsOutOfOrder,
		s.DuplicatedPackets,
		s.IntervalCount,
		s.DurationSeconds,
		s.AvgKBPerSec,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to append summary to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote summary to ClickHouse for run '%s'", runID)
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
