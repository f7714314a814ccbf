// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfwork/internal/archive"
	"github.com/pdiddy/pdfwork/internal/batch"
	"github.com/pdiddy/pdfwork/internal/enumerate"
	"github.com/pdiddy/pdfwork/internal/history"
	"github.com/pdiddy/pdfwork/internal/toolrun"
	"github.com/pdiddy/pdfwork/pkg/types"
)

// addBatchFlags registers the flags shared by convert, compress, and
// decompress.
func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output directory (default: <input-dir>-out)")
	cmd.Flags().BoolP("recursive", "r", true, "descend into subdirectories")
	cmd.Flags().String("ext", ".pdf", "target file extension, matched case-insensitively")
	cmd.Flags().Int("jobs", 1, "concurrent workers (1 = sequential)")
	cmd.Flags().Duration("timeout", toolrun.DefaultTimeout, "per-file tool timeout")
	cmd.Flags().Bool("overwrite", false, "allow a destination that equals its source")
	cmd.Flags().String("report", "", "write a YAML batch report to this file")
	cmd.Flags().String("archive", "", "package the output directory afterwards: zip, 7z, or tar.gz")
	cmd.Flags().Bool("no-history", false, "skip recording this batch in the history ledger")
}

// toolsConfig assembles the external tool configuration from config keys and
// the per-command timeout flag.
func toolsConfig(cmd *cobra.Command) types.ToolsConfig {
	return types.ToolsConfig{
		Pdftotext:   viper.GetString("tools.pdftotext"),
		Ghostscript: viper.GetString("tools.gs"),
		Qpdf:        viper.GetString("tools.qpdf"),
		SevenZip:    viper.GetString("tools.sevenzip"),
		Timeout:     durationSetting(cmd, "timeout", "tools.timeout"),
	}
}

// runBatch is the shared flow behind the three batch subcommands: preflight
// the required tool, enumerate, run, summarize, then the optional report,
// history, and archive stages. Per-file failures live in the summary; the
// command itself fails only when the batch cannot start, an optional stage
// errors, or any file failed.
func runBatch(cmd *cobra.Command, args []string, op types.Operation, opCfg types.OperationConfig) error {
	root := args[0]

	outDir := stringSetting(cmd, "output", "output_dir")
	if outDir == "" {
		outDir = filepath.Clean(root) + "-out"
	}
	recursive, _ := cmd.Flags().GetBool("recursive")
	ext, _ := cmd.Flags().GetString("ext")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	jobs := intSetting(cmd, "jobs", "jobs")

	invoker := toolrun.New(toolsConfig(cmd))

	// A missing tool fails the batch before any file is touched.
	tool, err := toolrun.RequiredTool(string(op))
	if err != nil {
		return err
	}
	if _, err := invoker.Probe(cmd.Context(), tool); err != nil {
		return err
	}

	src := enumerate.Source{Root: root, Extension: ext, Recursive: recursive}
	tasks, err := enumerate.Tasks(src, op, opCfg)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "no matching files found")
		return nil
	}

	runner := &batch.Runner{
		Invoker:   invoker,
		OutputDir: outDir,
		Jobs:      jobs,
		Overwrite: overwrite,
	}
	results := runner.Run(cmd.Context(), tasks, os.Stdout)
	summary := batch.Summarize(results)
	batch.PrintSummary(os.Stdout, summary)

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		rep := batch.Report{
			Operation: op,
			Root:      root,
			OutputDir: outDir,
			Summary:   summary,
		}
		if err := batch.WriteReportFile(reportPath, rep); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Report written to %s\n", reportPath)
	}

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		if err := recordHistory(cmd, op, root, outDir, summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: history record failed: %v\n", err)
		}
	}

	if formatName, _ := cmd.Flags().GetString("archive"); formatName != "" {
		if err := archiveOutput(cmd, invoker, outDir, formatName); err != nil {
			return err
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}

func recordHistory(cmd *cobra.Command, op types.Operation, root, outDir string, summary types.BatchSummary) error {
	if viper.GetBool("history.disabled") {
		return nil
	}
	path := viper.GetString("history.path")
	if path == "" {
		path = "pdfwork-history.db"
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(cmd.Context(), history.NewRun(op, root, outDir, summary))
}

// archiveOutput packages the output directory as a sibling archive named
// after it.
func archiveOutput(cmd *cobra.Command, invoker *toolrun.Runner, outDir, formatName string) error {
	format, err := archive.ParseFormat(formatName)
	if err != nil {
		return err
	}

	dest := filepath.Join(filepath.Dir(outDir), filepath.Base(outDir)+"."+string(format))
	res, err := (&archive.Archiver{Invoker: invoker}).Archive(cmd.Context(), outDir, format, dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Archived %d file(s) to %s\n", res.Files, res.Path)
	return nil
}
