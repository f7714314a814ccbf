// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfwork/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the ledger of past batch runs",
	Long: `History reads the local SQLite ledger that batch commands append to.
Use subcommands to list recent runs, show one run's per-file results, or
export the full ledger.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent batch runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-26s  %-19s  %-10s  %5s  %4s  %9s  %s\n",
		"ID", "Started", "Operation", "Files", "Fail", "Saved", "Root")
	for _, run := range runs {
		fmt.Fprintf(os.Stdout, "%-26s  %-19s  %-10s  %5d  %4d  %9s  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Operation,
			run.TotalFiles,
			run.Failed,
			humanize.IBytes(uint64(max64(run.InputBytes-run.OutputBytes, 0))),
			run.Root,
		)
	}
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its per-file results",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Run %s\n", run.ID)
	fmt.Fprintf(os.Stdout, "  started:   %s\n", run.StartedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(os.Stdout, "  operation: %s\n", run.Operation)
	fmt.Fprintf(os.Stdout, "  root:      %s\n", run.Root)
	fmt.Fprintf(os.Stdout, "  output:    %s\n", run.OutputDir)
	fmt.Fprintf(os.Stdout, "  files:     %d (%d succeeded, %d failed)\n",
		run.TotalFiles, run.Succeeded, run.Failed)
	fmt.Fprintf(os.Stdout, "  size:      %s -> %s\n",
		humanize.IBytes(uint64(run.InputBytes)), humanize.IBytes(uint64(run.OutputBytes)))
	fmt.Fprintf(os.Stdout, "  elapsed:   %s\n", run.Duration)

	for _, f := range run.Files {
		status := "ok"
		if !f.Succeeded {
			status = "FAILED"
		}
		fmt.Fprintf(os.Stdout, "  [%3d] %-6s  %s", f.Index, status, f.SourcePath)
		if f.Error != "" {
			fmt.Fprintf(os.Stdout, "  (%s)", f.Error)
		}
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the full ledger to YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		err = store.ExportYAML(cmd.Context(), args[0])
	case "json":
		err = store.ExportJSON(cmd.Context(), args[0])
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported to %s\n", args[0])
	return nil
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	path := stringSetting(cmd, "db", "history.path")
	if path == "" {
		path = "pdfwork-history.db"
	}
	return history.Open(path)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func init() {
	// Shared flag on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("db", "", "history database file (default: history.path config or pdfwork-history.db)")

	historyListCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
