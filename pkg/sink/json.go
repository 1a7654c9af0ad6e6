// Package sink persists finalized compliance reports: JSON artifacts,
// JUnit XML for CI, markdown summaries, an append-only run transcript,
// and a Redis store for fleet result collection.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edgewire-io/adinconf/pkg/conformance"
)

// WriteJSON writes the report as an indented JSON artifact, creating the
// parent directory if needed.
func WriteJSON(report *conformance.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadJSON loads a previously written report artifact.
func ReadJSON(path string) (*conformance.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var report conformance.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return &report, nil
}
