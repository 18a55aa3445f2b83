// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds settings for fetching a source document over HTTP.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bikecount/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ConvertConfig holds settings for the RDF/XML to CSV conversion stage.
type ConvertConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Manifest enables writing a <csv>.manifest.yaml sidecar next to the output.
	Manifest bool `json:"manifest" yaml:"manifest" mapstructure:"manifest"`

	// Normalize applies Unicode NFC normalization to every extracted value.
	Normalize bool `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
}

// TrendConfig holds settings for the semiannual trend report.
type TrendConfig struct {
	// Stations restricts the report to these counters. Empty means all.
	Stations []string `json:"stations" yaml:"stations" mapstructure:"stations"`

	// Start drops readings dated before this day (YYYY-MM-DD). Empty means no bound.
	Start string `json:"start" yaml:"start" mapstructure:"start"`

	// Marker is a reference day (YYYY-MM-DD) flagged when it falls inside the
	// reported range. Empty disables the marker.
	Marker string `json:"marker" yaml:"marker" mapstructure:"marker"`
}

// StoreConfig holds settings for the SQLite reading store.
type StoreConfig struct {
	// Database is the path of the SQLite database file.
	Database string `json:"database" yaml:"database" mapstructure:"database"`
}

// Config groups all stage configurations.
type Config struct {
	Convert ConvertConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Trend   TrendConfig   `json:"trend" yaml:"trend" mapstructure:"trend"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() Config {
	return Config{
		Convert: ConvertConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "bikecount/dev",
			},
		},
		Trend: TrendConfig{
			Stations: []string{"Ercolani", "Sabotino", "San Donato"},
			Start:    "2019-01-01",
			Marker:   "2024-01-01",
		},
		Store: StoreConfig{
			Database: "bikecount.db",
		},
	}
}
