package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfwork/internal/toolrun"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Check that the external executables are installed",
	Long: `Tools probes pdftotext, Ghostscript, qpdf, and 7z and prints where each
resolved. Configure alternate paths via tools.* keys in pdfwork.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := toolrun.New(toolsConfig(cmd))

		missing := 0
		fmt.Fprintf(os.Stdout, "%-10s  %-4s  %s\n", "Tool", "OK", "Path")
		for _, pr := range runner.ProbeAll(cmd.Context()) {
			if pr.Available() {
				fmt.Fprintf(os.Stdout, "%-10s  %-4s  %s\n", pr.Tool, "yes", pr.Path)
				continue
			}
			fmt.Fprintf(os.Stdout, "%-10s  %-4s  %v\n", pr.Tool, "no", pr.Error)
			if pr.Tool != toolrun.ToolSevenZip {
				missing++
			}
		}

		// 7z is optional; the three PDF tools are not.
		if missing > 0 {
			return fmt.Errorf("%d required tool(s) missing", missing)
		}
		return nil
	},
}

func init() {
	toolsCmd.Flags().Duration("timeout", toolrun.DefaultTimeout, "probe timeout")

	rootCmd.AddCommand(toolsCmd)
}
