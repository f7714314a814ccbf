// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolrun

import (
	"context"
	"fmt"
	"strings"
)

// probeArgs holds the cheap invocation used to verify a tool responds.
// pdftotext and gs print their version on -v; qpdf has no -v and answers
// --help instead. 7z is optional and checked by lookup only.
var probeArgs = map[Tool][]string{
	ToolPdftotext:   {"-v"},
	ToolGhostscript: {"-v"},
	ToolQpdf:        {"--help"},
	ToolSevenZip:    nil,
}

// ProbeResult reports the preflight outcome for one tool.
type ProbeResult struct {
	Tool  Tool
	Path  string
	Error error
}

// Available reports whether the tool resolved and answered its probe.
func (p ProbeResult) Available() bool {
	return p.Error == nil
}

// Probe verifies that the tool's executable resolves and responds to its
// probe invocation, returning the resolved path. A batch fails fast on a
// probe error instead of producing one failed result per file.
func (r *Runner) Probe(ctx context.Context, tool Tool) (string, error) {
	path, err := r.resolve(tool)
	if err != nil {
		return "", err
	}

	args, ok := probeArgs[tool]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", tool)
	}
	if args == nil {
		return path, nil
	}

	code, _, stderr, err := r.exec.Run(ctx, path, args...)
	if err != nil {
		return "", fmt.Errorf("probing %s: %w", tool, err)
	}
	if code != 0 {
		return "", fmt.Errorf("probing %s: %w", tool,
			&ExitError{Tool: tool, ExitCode: code, Stderr: strings.TrimSpace(stderr)})
	}
	return path, nil
}

// ProbeAll probes every known tool and returns the results in a fixed order,
// available or not. Feeds the `pdfwork tools` preflight table.
func (r *Runner) ProbeAll(ctx context.Context) []ProbeResult {
	tools := []Tool{ToolPdftotext, ToolGhostscript, ToolQpdf, ToolSevenZip}
	results := make([]ProbeResult, 0, len(tools))
	for _, tool := range tools {
		path, err := r.Probe(ctx, tool)
		results = append(results, ProbeResult{Tool: tool, Path: path, Error: err})
	}
	return results
}

// RequiredTool maps an operation name onto the executable it needs.
func RequiredTool(operation string) (Tool, error) {
	switch operation {
	case "convert":
		return ToolPdftotext, nil
	case "compress":
		return ToolGhostscript, nil
	case "decompress":
		return ToolQpdf, nil
	}
	return "", fmt.Errorf("unknown operation %q", operation)
}
