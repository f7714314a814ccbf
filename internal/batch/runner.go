// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives a sequence of file tasks through the external tool
// adapter and reduces the per-file outcomes into a summary. One failing file
// never aborts the batch: every per-task error is downgraded into a failed
// JobResult and processing continues.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/pdfwork/internal/toolrun"
	"github.com/pdiddy/pdfwork/pkg/types"
)

// Invoker executes one external tool invocation. Satisfied by
// *toolrun.Runner; faked in tests.
type Invoker interface {
	Run(ctx context.Context, tool toolrun.Tool, args []string) (toolrun.Result, error)
}

// Runner processes a batch of file tasks.
type Runner struct {
	// Invoker runs the external tools.
	Invoker Invoker

	// OutputDir is the root of the mirrored output tree.
	OutputDir string

	// Jobs is the worker count; <= 1 processes the batch sequentially.
	Jobs int

	// Overwrite permits a task whose destination equals its source.
	Overwrite bool
}

// Run processes every task and returns one JobResult per task, in
// enumeration order regardless of worker count. Per-file status lines are
// written to w as results arrive. No retries: the tools are deterministic,
// a retry would not change the outcome.
func (r *Runner) Run(ctx context.Context, tasks []types.FileTask, w io.Writer) []types.JobResult {
	var results []types.JobResult
	if r.Jobs > 1 {
		results = r.runPool(ctx, tasks, w)
	} else {
		results = make([]types.JobResult, 0, len(tasks))
		for _, task := range tasks {
			res := r.runTask(ctx, task)
			printStatus(w, res)
			results = append(results, res)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Task.Index < results[j].Task.Index
	})
	return results
}

// runPool fans the tasks out over a bounded worker pool. Workers share
// nothing but the channels; ordering is restored by the caller's sort.
func (r *Runner) runPool(ctx context.Context, tasks []types.FileTask, w io.Writer) []types.JobResult {
	jobs := make(chan types.FileTask)
	out := make(chan types.JobResult)

	var wg sync.WaitGroup
	for i := 0; i < r.Jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				out <- r.runTask(ctx, task)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case jobs <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]types.JobResult, 0, len(tasks))
	for res := range out {
		printStatus(w, res)
		results = append(results, res)
	}
	return results
}

// runTask executes one task end to end. It never returns an error: every
// failure mode becomes a failed JobResult.
func (r *Runner) runTask(ctx context.Context, task types.FileTask) types.JobResult {
	res := types.JobResult{Task: task, OutputPath: r.outputPath(task)}

	info, err := os.Stat(task.SourcePath)
	if err != nil {
		return failed(res, fmt.Sprintf("input file missing: %v", err))
	}
	res.InputBytes = info.Size()

	if samePath(task.SourcePath, res.OutputPath) && !r.Overwrite {
		return failed(res, "destination equals source; pass --overwrite to allow in-place output")
	}

	if err := os.MkdirAll(filepath.Dir(res.OutputPath), 0o755); err != nil {
		return failed(res, fmt.Sprintf("creating output directory: %v", err))
	}

	tool, args, err := buildCommand(task, res.OutputPath)
	if err != nil {
		return failed(res, err.Error())
	}

	run, err := r.Invoker.Run(ctx, tool, args)
	res.ExitCode = run.ExitCode
	res.Duration = run.Duration
	if err != nil {
		return failed(res, err.Error())
	}
	if run.ExitCode != 0 {
		exitErr := &toolrun.ExitError{
			Tool:     tool,
			ExitCode: run.ExitCode,
			Stderr:   strings.TrimSpace(run.Stderr),
		}
		return failed(res, exitErr.Error())
	}

	out, err := os.Stat(res.OutputPath)
	if err != nil {
		return failed(res, fmt.Sprintf("output file missing after %s run: %v", tool, err))
	}
	res.OutputBytes = out.Size()
	res.Succeeded = true
	return res
}

// buildCommand maps a task onto the tool and argv for its operation. This is
// the single place operation dispatch happens.
func buildCommand(task types.FileTask, outPath string) (toolrun.Tool, []string, error) {
	switch task.Operation {
	case types.OpConvert:
		var args []string
		if task.Config.Layout {
			args = append(args, "-layout")
		}
		args = append(args, "-nopgbrk", "-enc", "UTF-8", task.SourcePath, outPath)
		return toolrun.ToolPdftotext, args, nil

	case types.OpCompress:
		quality := task.Config.Quality
		if quality == "" {
			quality = types.QualityEbook
		}
		args := []string{
			"-sDEVICE=pdfwrite",
			"-dCompatibilityLevel=1.4",
			"-dPDFSETTINGS=/" + string(quality),
			"-dNOPAUSE", "-dQUIET", "-dBATCH",
		}
		if task.Config.Safer {
			args = append(args, "-dSAFER")
		}
		if task.Config.Verbose {
			args = append(args, "-v")
		}
		args = append(args, "-sOutputFile="+outPath, task.SourcePath)
		return toolrun.ToolGhostscript, args, nil

	case types.OpDecompress:
		return toolrun.ToolQpdf, []string{"--linearize", task.SourcePath, outPath}, nil
	}
	return "", nil, fmt.Errorf("unknown operation %q", task.Operation)
}

// outputPath mirrors the task's relative path under the output root, with
// the extension swapped for the operation's output type.
func (r *Runner) outputPath(task types.FileTask) string {
	stem := strings.TrimSuffix(task.RelPath, filepath.Ext(task.RelPath))
	ext := ".pdf"
	if task.Operation == types.OpConvert {
		ext = ".txt"
	}
	return filepath.Join(r.OutputDir, stem+ext)
}

func failed(res types.JobResult, msg string) types.JobResult {
	res.Succeeded = false
	res.ErrorMessage = msg
	return res
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

func printStatus(w io.Writer, res types.JobResult) {
	if res.Succeeded {
		fmt.Fprintf(w, "%s: %s\n", opVerb(res.Task.Operation), res.Task.RelPath)
		return
	}
	fmt.Fprintf(w, "failed:  %s (%s)\n", res.Task.RelPath, res.ErrorMessage)
}

func opVerb(op types.Operation) string {
	switch op {
	case types.OpConvert:
		return "converted"
	case types.OpCompress:
		return "compressed"
	case types.OpDecompress:
		return "decompressed"
	}
	return "processed"
}
