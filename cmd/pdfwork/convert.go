package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfwork/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input-dir>",
	Short: "Extract text from PDF files with pdftotext",
	Long: `Convert walks the input directory and runs pdftotext on every matching
file, writing one .txt file per PDF into a mirrored output tree. Layout
preservation is on by default; disable it with --layout=false.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, _ := cmd.Flags().GetBool("layout")
		return runBatch(cmd, args, types.OpConvert, types.OperationConfig{Layout: layout})
	},
}

func init() {
	convertCmd.Flags().Bool("layout", true, "preserve the physical text layout (-layout)")
	addBatchFlags(convertCmd)

	rootCmd.AddCommand(convertCmd)
}
