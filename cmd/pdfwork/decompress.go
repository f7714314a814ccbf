package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfwork/pkg/types"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress <input-dir>",
	Short: "Linearize PDF files with qpdf",
	Long: `Decompress runs qpdf --linearize on every matching PDF, producing
web-optimized output files in a mirrored output tree.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, types.OpDecompress, types.OperationConfig{})
	},
}

func init() {
	addBatchFlags(decompressCmd)

	rootCmd.AddCommand(decompressCmd)
}
