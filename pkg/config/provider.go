package config

import (
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/aggregate"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration, with defaults and environment applied
	LoadConfig() (*ConfigData, error)
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	API        APIData               `yaml:"api"`
	Output     OutputData            `yaml:"output"`
	Server     ServerData            `yaml:"server"`
	Log        LogData               `yaml:"log"`
	Interval   time.Duration         `yaml:"interval"`
	Metrics    []MetricData          `yaml:"metrics"`
	MergeRules []aggregate.MergeRule `yaml:"merge_rules"`
	Report     ReportData            `yaml:"report"`
}

// APIData holds the upstream mesonet API settings
type APIData struct {
	BaseURL         string        `yaml:"base_url"`
	Token           string        `yaml:"-"`
	Timeout         time.Duration `yaml:"timeout"`
	RequestInterval time.Duration `yaml:"request_interval"`
	Workers         int           `yaml:"workers"`
	ActiveOnly      bool          `yaml:"active_only"`
}

// OutputData controls where metric documents are written
type OutputData struct {
	Dir string `yaml:"dir"`
}

// ServerData enables the optional HTTP endpoint when ListenAddr is set
type ServerData struct {
	ListenAddr string `yaml:"listen_addr"`
}

// LogData configures logging
type LogData struct {
	Debug      bool   `yaml:"debug"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Metric kinds
const (
	KindLatest       = "latest"
	KindSum          = "sum"
	KindMin          = "min"
	KindMax          = "max"
	KindMean         = "mean"
	KindPercentAbove = "percent_above"
	KindWind         = "wind"
	KindPairDiff     = "pair_diff"
)

// MetricData describes one derived output file
type MetricData struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	Variables []string `yaml:"variables"`
	Limit     int      `yaml:"limit"`

	// MaxAge is the staleness limit for latest and wind metrics and the
	// aggregation window for the others.
	MaxAge time.Duration `yaml:"max_age"`

	Threshold float64 `yaml:"threshold,omitempty"`

	// Probe issues a one-row query first and skips the station when it
	// comes back empty.
	Probe bool `yaml:"probe,omitempty"`

	// StartWindow, when set, sends start_date = now - StartWindow
	StartWindow time.Duration `yaml:"start_window,omitempty"`
}

// ReportData configures the per-station freshness report
type ReportData struct {
	Enabled   bool     `yaml:"enabled"`
	Variables []string `yaml:"variables"`
}
