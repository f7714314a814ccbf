// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolrun wraps the external PDF executables (pdftotext, Ghostscript,
// qpdf, 7z) behind a single adapter. Arguments are always passed as an argv
// slice, never interpolated into a shell string: PDF paths may contain any
// character the filesystem allows.
package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/pdiddy/pdfwork/pkg/types"
)

// Tool identifies one of the external executables.
type Tool string

const (
	ToolPdftotext   Tool = "pdftotext"
	ToolGhostscript Tool = "gs"
	ToolQpdf        Tool = "qpdf"
	ToolSevenZip    Tool = "7z"
)

// DefaultTimeout bounds a single tool invocation when the config names none.
const DefaultTimeout = 5 * time.Minute

// Result captures one finished invocation. A non-zero ExitCode is a normal
// result, not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ToolNotFoundError reports an executable that could not be located.
type ToolNotFoundError struct {
	Tool Tool
	Path string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s not found (looked for %q)", e.Tool, e.Path)
}

// TimeoutError reports an invocation that exceeded its timeout. The
// underlying process has been killed by the time this is returned.
type TimeoutError struct {
	Tool    Tool
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Tool, e.Timeout)
}

// ExitError describes a non-zero exit for callers that downgrade it into a
// per-file failure message. The adapter itself never returns it from Run.
type ExitError struct {
	Tool     Tool
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Stderr)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) (exitCode int, stdout, stderr string, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) (int, string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), stdout.String(), stderr.String(), nil
		}
		return -1, stdout.String(), stderr.String(), err
	}
	return 0, stdout.String(), stderr.String(), nil
}

// Runner resolves tool names to configured paths and executes them with a
// per-invocation timeout.
type Runner struct {
	paths   map[Tool]string
	timeout time.Duration
	exec    executor
}

// New builds a Runner from the tools configuration. Empty paths fall back to
// the bare tool name, resolved on PATH at invocation time.
func New(cfg types.ToolsConfig) *Runner {
	return newRunner(cfg, &osExecutor{})
}

func newRunner(cfg types.ToolsConfig, exec executor) *Runner {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	paths := map[Tool]string{
		ToolPdftotext:   cfg.Pdftotext,
		ToolGhostscript: cfg.Ghostscript,
		ToolQpdf:        cfg.Qpdf,
		ToolSevenZip:    cfg.SevenZip,
	}
	for tool, p := range paths {
		if p == "" {
			paths[tool] = string(tool)
		}
	}
	return &Runner{paths: paths, timeout: timeout, exec: exec}
}

// Run executes one tool with the given argv. The exit code is part of the
// Result; the error is non-nil only when the executable is missing, the
// timeout elapses, or the process cannot be started.
func (r *Runner) Run(ctx context.Context, tool Tool, args []string) (Result, error) {
	path, err := r.resolve(tool)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	code, stdout, stderr, err := r.exec.Run(ctx, path, args...)
	res := Result{
		ExitCode: code,
		Stdout:   stdout,
		Stderr:   stderr,
		Duration: time.Since(start),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, &TimeoutError{Tool: tool, Timeout: r.timeout}
	}
	if err != nil {
		return res, fmt.Errorf("running %s: %w", tool, err)
	}
	return res, nil
}

func (r *Runner) resolve(tool Tool) (string, error) {
	configured, ok := r.paths[tool]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", tool)
	}
	path, err := r.exec.LookPath(configured)
	if err != nil {
		return "", &ToolNotFoundError{Tool: tool, Path: configured}
	}
	return path, nil
}
