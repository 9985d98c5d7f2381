package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NATSConfig holds the connection details for the measurement event bus.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds the connection details for a ClickHouse writer.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TextConfig holds the settings for the plain-text writer.
type TextConfig struct {
	Path string `yaml:"path"`
}

// GobConfig holds the settings for the gob file writer.
type GobConfig struct {
	Path string `yaml:"path"`
}

// WriterDef defines a single storage backend for the engine.
type WriterDef struct {
	Type       string           `yaml:"type"` // "clickhouse", "text" or "gob"
	Enabled    bool             `yaml:"enabled"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Text       TextConfig       `yaml:"text"`
	Gob        GobConfig        `yaml:"gob"`
}

// EngineConfig holds the configuration for the collection engine.
type EngineConfig struct {
	NumWorkers         int         `yaml:"num_workers"`
	SizeOfEventChannel int         `yaml:"size_of_event_channel"`
	FlushInterval      string      `yaml:"flush_interval"`
	Writers            []WriterDef `yaml:"writers"`
}

// SMTPConfig holds the settings for the email notifier.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"` // comma-separated recipients
}

// AlerterRule defines one threshold a finished run is checked against.
type AlerterRule struct {
	Name           string  `yaml:"name"`
	MinAvgKBPerSec float64 `yaml:"min_avg_kb_per_sec"`
	MinPackets     uint64  `yaml:"min_packets"`
}

// AlerterConfig holds the configuration for run alerting.
type AlerterConfig struct {
	Enabled bool          `yaml:"enabled"`
	Rules   []AlerterRule `yaml:"rules"`
}

// APIConfig holds the configuration for the query API server.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// SenderConfig holds the defaults for the ng-send load generator.
type SenderConfig struct {
	Count    int    `yaml:"count"`
	Size     int    `yaml:"size"`
	Interval string `yaml:"interval"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	NATS    NATSConfig    `yaml:"nats"`
	Engine  EngineConfig  `yaml:"engine"`
	API     APIConfig     `yaml:"api"`
	Sender  SenderConfig  `yaml:"sender"`
	Alerter AlerterConfig `yaml:"alerter"`
	SMTP    SMTPConfig    `yaml:"smtp"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return &cfg, nil
}
