// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfwork/pkg/types"
)

// Report is the on-disk representation of a finished batch. A batch can be
// saved to a file and inspected later without rerunning the tools.
type Report struct {
	Operation types.Operation    `yaml:"operation"`
	Root      string             `yaml:"root"`
	OutputDir string             `yaml:"output_dir"`
	Timestamp time.Time          `yaml:"timestamp"`
	Summary   types.BatchSummary `yaml:"summary"`
}

// WriteReportFile saves a batch report to a YAML file.
func WriteReportFile(path string, rep Report) error {
	if rep.Timestamp.IsZero() {
		rep.Timestamp = time.Now()
	}
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("marshaling report file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReportFile loads a previously saved report from disk.
func ReadReportFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report file: %w", err)
	}
	var rep Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parsing report file: %w", err)
	}
	return &rep, nil
}
