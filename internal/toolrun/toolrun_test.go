// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolrun

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/pdfwork/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runFunc       func(ctx context.Context, name string, args ...string) (int, string, string, error)

	lastName string
	lastArgs []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(ctx context.Context, name string, args ...string) (int, string, string, error) {
	m.lastName = name
	m.lastArgs = args
	if m.runFunc != nil {
		return m.runFunc(ctx, name, args...)
	}
	return 0, "", "", nil
}

func allTools() map[string]bool {
	return map[string]bool{"pdftotext": true, "gs": true, "qpdf": true, "7z": true}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		cfg          types.ToolsConfig
		exec         *mockExecutor
		tool         Tool
		args         []string
		wantExit     int
		wantStderr   string
		wantErr      bool
		wantNotFound bool
	}{
		{
			name: "zero exit",
			exec: &mockExecutor{availableBins: allTools()},
			tool: ToolQpdf,
			args: []string{"--linearize", "in.pdf", "out.pdf"},
		},
		{
			name: "non-zero exit is a normal result",
			exec: &mockExecutor{
				availableBins: allTools(),
				runFunc: func(context.Context, string, ...string) (int, string, string, error) {
					return 1, "", "GPL Ghostscript: error", nil
				},
			},
			tool:       ToolGhostscript,
			wantExit:   1,
			wantStderr: "GPL Ghostscript: error",
		},
		{
			name:         "missing executable",
			exec:         &mockExecutor{availableBins: map[string]bool{}},
			tool:         ToolPdftotext,
			wantErr:      true,
			wantNotFound: true,
		},
		{
			name: "configured path is looked up, not the bare name",
			cfg:  types.ToolsConfig{Qpdf: "/opt/qpdf/bin/qpdf"},
			exec: &mockExecutor{availableBins: map[string]bool{"/opt/qpdf/bin/qpdf": true}},
			tool: ToolQpdf,
		},
		{
			name: "start failure",
			exec: &mockExecutor{
				availableBins: allTools(),
				runFunc: func(context.Context, string, ...string) (int, string, string, error) {
					return -1, "", "", errors.New("fork/exec: permission denied")
				},
			},
			tool:    ToolPdftotext,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(tt.cfg, tt.exec)
			res, err := r.Run(context.Background(), tt.tool, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var nfe *ToolNotFoundError
				if tt.wantNotFound && !errors.As(err, &nfe) {
					t.Errorf("expected ToolNotFoundError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.ExitCode != tt.wantExit {
				t.Errorf("exit code = %d, want %d", res.ExitCode, tt.wantExit)
			}
			if res.Stderr != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", res.Stderr, tt.wantStderr)
			}
		})
	}
}

func TestRunPassesArgvUntouched(t *testing.T) {
	exec := &mockExecutor{availableBins: allTools()}
	r := newRunner(types.ToolsConfig{}, exec)

	// Paths with shell metacharacters must reach the executor verbatim.
	args := []string{"-layout", "-nopgbrk", "-enc", "UTF-8", "a file; $(rm).pdf", "out.txt"}
	if _, err := r.Run(context.Background(), ToolPdftotext, args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.lastName != "/usr/bin/pdftotext" {
		t.Errorf("executed %q, want resolved pdftotext path", exec.lastName)
	}
	if len(exec.lastArgs) != len(args) {
		t.Fatalf("got %d args, want %d", len(exec.lastArgs), len(args))
	}
	for i, a := range args {
		if exec.lastArgs[i] != a {
			t.Errorf("arg[%d] = %q, want %q", i, exec.lastArgs[i], a)
		}
	}
}

func TestRunTimeout(t *testing.T) {
	exec := &mockExecutor{
		availableBins: allTools(),
		runFunc: func(ctx context.Context, _ string, _ ...string) (int, string, string, error) {
			<-ctx.Done()
			return -1, "", "", ctx.Err()
		},
	}
	r := newRunner(types.ToolsConfig{Timeout: 10 * time.Millisecond}, exec)

	_, err := r.Run(context.Background(), ToolGhostscript, []string{"-v"})

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if te.Tool != ToolGhostscript {
		t.Errorf("timeout tool = %q, want gs", te.Tool)
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		tool     Tool
		wantArgs string
		wantErr  bool
	}{
		{
			name:     "pdftotext probed with -v",
			exec:     &mockExecutor{availableBins: allTools()},
			tool:     ToolPdftotext,
			wantArgs: "-v",
		},
		{
			name:     "qpdf probed with --help",
			exec:     &mockExecutor{availableBins: allTools()},
			tool:     ToolQpdf,
			wantArgs: "--help",
		},
		{
			name: "7z checked by lookup only",
			exec: &mockExecutor{availableBins: allTools()},
			tool: ToolSevenZip,
		},
		{
			name:    "missing tool",
			exec:    &mockExecutor{availableBins: map[string]bool{}},
			tool:    ToolGhostscript,
			wantErr: true,
		},
		{
			name: "probe exits non-zero",
			exec: &mockExecutor{
				availableBins: allTools(),
				runFunc: func(context.Context, string, ...string) (int, string, string, error) {
					return 2, "", "unknown option", nil
				},
			},
			tool:    ToolQpdf,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(types.ToolsConfig{}, tt.exec)
			path, err := r.Probe(context.Background(), tt.tool)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if path == "" {
				t.Error("expected resolved path")
			}
			if tt.wantArgs != "" && strings.Join(tt.exec.lastArgs, " ") != tt.wantArgs {
				t.Errorf("probe args = %v, want %q", tt.exec.lastArgs, tt.wantArgs)
			}
		})
	}
}

func TestProbeAll(t *testing.T) {
	exec := &mockExecutor{availableBins: map[string]bool{"pdftotext": true, "gs": true}}
	r := newRunner(types.ToolsConfig{}, exec)

	results := r.ProbeAll(context.Background())
	if len(results) != 4 {
		t.Fatalf("got %d probe results, want 4", len(results))
	}

	byTool := map[Tool]ProbeResult{}
	for _, pr := range results {
		byTool[pr.Tool] = pr
	}
	if !byTool[ToolPdftotext].Available() {
		t.Error("pdftotext should be available")
	}
	if byTool[ToolQpdf].Available() {
		t.Error("qpdf should be unavailable")
	}
}

func TestRequiredTool(t *testing.T) {
	tests := []struct {
		op      string
		want    Tool
		wantErr bool
	}{
		{op: "convert", want: ToolPdftotext},
		{op: "compress", want: ToolGhostscript},
		{op: "decompress", want: ToolQpdf},
		{op: "archive", wantErr: true},
	}
	for _, tt := range tests {
		got, err := RequiredTool(tt.op)
		if tt.wantErr {
			if err == nil {
				t.Errorf("RequiredTool(%q): expected error", tt.op)
			}
			continue
		}
		if err != nil {
			t.Errorf("RequiredTool(%q): %v", tt.op, err)
		}
		if got != tt.want {
			t.Errorf("RequiredTool(%q) = %q, want %q", tt.op, got, tt.want)
		}
	}
}
