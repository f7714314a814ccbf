// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ToolsConfig holds the external executable paths and the per-invocation
// timeout. A bare name is resolved on PATH; an absolute path is used as-is.
type ToolsConfig struct {
	// Pdftotext is the pdftotext executable (default "pdftotext").
	Pdftotext string `json:"pdftotext" yaml:"pdftotext"`

	// Ghostscript is the gs executable (default "gs").
	Ghostscript string `json:"gs" yaml:"gs"`

	// Qpdf is the qpdf executable (default "qpdf").
	Qpdf string `json:"qpdf" yaml:"qpdf"`

	// SevenZip is the 7z executable, used only for 7z archives (default "7z").
	SevenZip string `json:"sevenzip" yaml:"sevenzip"`

	// Timeout bounds each tool invocation (default 5m). The process is
	// killed when it elapses.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RunConfig holds the batch-level settings shared by all operations.
type RunConfig struct {
	// InputDir is the root directory to enumerate.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir is the root of the mirrored output tree.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Extension is the target file extension, matched case-insensitively
	// (default ".pdf").
	Extension string `json:"extension" yaml:"extension"`

	// Recursive walks subdirectories of InputDir.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Jobs is the number of concurrent workers; <= 1 means sequential.
	Jobs int `json:"jobs" yaml:"jobs"`

	// Overwrite permits a task whose destination equals its source.
	// Off by default: overwrite-in-place is explicit opt-in.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`
}

// HistoryConfig holds settings for the batch-run ledger.
type HistoryConfig struct {
	// Path is the SQLite database file (default "pdfwork-history.db").
	Path string `json:"path" yaml:"path"`

	// Disabled turns off history recording entirely.
	Disabled bool `json:"disabled" yaml:"disabled"`
}
