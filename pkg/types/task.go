// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for pdfwork: batch tasks,
// per-file results, batch summaries, and configuration structs. The CLI and
// any other front end communicate with the core packages only through these
// types.
package types

import (
	"fmt"
	"time"
)

// Operation identifies what a batch does to each file.
type Operation string

const (
	// OpConvert extracts text from a PDF via pdftotext.
	OpConvert Operation = "convert"
	// OpCompress rewrites a PDF at a chosen quality via Ghostscript.
	OpCompress Operation = "compress"
	// OpDecompress linearizes a PDF via qpdf.
	OpDecompress Operation = "decompress"
)

// Quality selects the Ghostscript -dPDFSETTINGS preset for compression.
type Quality string

const (
	QualityScreen   Quality = "screen"
	QualityEbook    Quality = "ebook"
	QualityPrepress Quality = "prepress"
	QualityDefault  Quality = "default"
)

// ParseQuality validates a quality name. The four names map directly onto
// Ghostscript's pdfwrite presets; anything else is rejected.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityScreen, QualityEbook, QualityPrepress, QualityDefault:
		return Quality(s), nil
	}
	return "", fmt.Errorf("unknown quality %q: use screen, ebook, prepress, or default", s)
}

// OperationConfig carries the operation-specific options for a batch. It is
// supplied once per batch and copied read-only into every FileTask.
type OperationConfig struct {
	// Quality is the compression preset (compress only).
	Quality Quality `json:"quality,omitempty" yaml:"quality,omitempty"`

	// Safer adds -dSAFER to the Ghostscript invocation (compress only).
	Safer bool `json:"safer,omitempty" yaml:"safer,omitempty"`

	// Verbose adds -v to the Ghostscript invocation (compress only).
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	// Layout preserves the physical text layout (convert only).
	Layout bool `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// FileTask is one unit of batch work: one file, one operation. Tasks are
// created by the enumerator, immutable once created, and consumed exactly
// once by the job runner.
type FileTask struct {
	// Index is the task's position in enumeration order. Results are sorted
	// back to this order before a summary is derived.
	Index int `json:"index" yaml:"index"`

	// SourcePath is the absolute path of the input file.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// RelPath is the path relative to the batch root. The output tree
	// mirrors the input tree through it.
	RelPath string `json:"rel_path" yaml:"rel_path"`

	Operation Operation       `json:"operation" yaml:"operation"`
	Config    OperationConfig `json:"config" yaml:"config"`
}

// JobResult records the outcome of one FileTask. It is never mutated after
// creation.
type JobResult struct {
	Task       FileTask `json:"task" yaml:"task"`
	OutputPath string   `json:"output_path" yaml:"output_path"`

	// ExitCode is the external tool's exit status. A non-zero exit is a
	// normal, recorded outcome, not an error that stops the batch.
	ExitCode  int  `json:"exit_code" yaml:"exit_code"`
	Succeeded bool `json:"succeeded" yaml:"succeeded"`

	InputBytes  int64         `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int64         `json:"output_bytes" yaml:"output_bytes"`
	Duration    time.Duration `json:"duration" yaml:"duration"`

	// ErrorMessage is empty on success. On failure it carries the tool's
	// stderr or the downgraded error text.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// BatchSummary is the aggregate report over all JobResults in a batch.
// Derived once, after every task has been processed; read-only thereafter.
// Invariants: Succeeded + Failed == TotalFiles and len(Results) == TotalFiles,
// with Results in enumeration order.
type BatchSummary struct {
	TotalFiles int `json:"total_files" yaml:"total_files"`
	Succeeded  int `json:"succeeded" yaml:"succeeded"`
	Failed     int `json:"failed" yaml:"failed"`

	TotalInputBytes  int64         `json:"total_input_bytes" yaml:"total_input_bytes"`
	TotalOutputBytes int64         `json:"total_output_bytes" yaml:"total_output_bytes"`
	TotalDuration    time.Duration `json:"total_duration" yaml:"total_duration"`

	Results []JobResult `json:"results" yaml:"results"`
}

// HasFailures reports whether any file in the batch failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// SpaceSaved returns the byte difference between input and output. Negative
// when the outputs grew.
func (s BatchSummary) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

// CompressionPercent returns the size reduction as a percentage of the input.
// Returns 0 for an empty batch so the empty sequence never divides by zero.
func (s BatchSummary) CompressionPercent() float64 {
	if s.TotalInputBytes == 0 {
		return 0
	}
	return (1 - float64(s.TotalOutputBytes)/float64(s.TotalInputBytes)) * 100
}

// FailedResults returns the results for failed files, in enumeration order.
func (s BatchSummary) FailedResults() []JobResult {
	var failed []JobResult
	for _, r := range s.Results {
		if !r.Succeeded {
			failed = append(failed, r)
		}
	}
	return failed
}
