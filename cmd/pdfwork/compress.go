package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfwork/pkg/types"
)

var compressCmd = &cobra.Command{
	Use:   "compress <input-dir>",
	Short: "Compress PDF files with Ghostscript",
	Long: `Compress rewrites every matching PDF through Ghostscript's pdfwrite
device at the chosen quality preset. screen gives the smallest files,
prepress the highest fidelity; ebook is the default middle ground.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		qualityName := stringSetting(cmd, "quality", "quality")
		quality, err := types.ParseQuality(qualityName)
		if err != nil {
			return err
		}

		safer, _ := cmd.Flags().GetBool("safer")
		verbose, _ := cmd.Flags().GetBool("verbose")
		cfg := types.OperationConfig{
			Quality: quality,
			Safer:   safer,
			Verbose: verbose,
		}
		return runBatch(cmd, args, types.OpCompress, cfg)
	},
}

func init() {
	compressCmd.Flags().StringP("quality", "q", string(types.QualityEbook), "compression preset: screen, ebook, prepress, or default")
	compressCmd.Flags().Bool("safer", false, "run Ghostscript with -dSAFER")
	compressCmd.Flags().BoolP("verbose", "v", false, "run Ghostscript with -v")
	addBatchFlags(compressCmd)

	rootCmd.AddCommand(compressCmd)
}
