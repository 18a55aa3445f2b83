// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

const manifestSuffix = ".manifest.yaml"

// Manifest records where a CSV came from and how it was produced.
type Manifest struct {
	Source      string   `yaml:"source"`
	Destination string   `yaml:"destination"`
	Namespace   string   `yaml:"namespace"`
	RecordTag   string   `yaml:"record_tag"`
	Fields      []string `yaml:"fields"`
	Records     int      `yaml:"records"`
	ConvertedAt string   `yaml:"converted_at"`
}

// ManifestPath returns the sidecar path for the CSV at csvPath.
func ManifestPath(csvPath string) string {
	return csvPath + manifestSuffix
}

// WriteManifest marshals m as YAML to path.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}
