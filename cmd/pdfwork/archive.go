package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfwork/internal/archive"
	"github.com/pdiddy/pdfwork/internal/toolrun"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <source-dir>",
	Short: "Package a directory into a zip, 7z, or tar.gz archive",
	Long: `Archive packages the given directory's contents into a single archive
file. zip and tar.gz are written in-process; 7z shells out to the 7z
executable. The source directory is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := filepath.Clean(args[0])

		formatName := stringSetting(cmd, "format", "archive_format")
		format, err := archive.ParseFormat(formatName)
		if err != nil {
			return err
		}

		dest, _ := cmd.Flags().GetString("dest")
		if dest == "" {
			dest = filepath.Join(filepath.Dir(src), filepath.Base(src)+"."+string(format))
		}

		invoker := toolrun.New(toolsConfig(cmd))
		res, err := (&archive.Archiver{Invoker: invoker}).Archive(cmd.Context(), src, format, dest)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Archived %d file(s) to %s\n", res.Files, res.Path)
		return nil
	},
}

func init() {
	archiveCmd.Flags().StringP("format", "f", string(archive.FormatZip), "archive format: zip, 7z, or tar.gz")
	archiveCmd.Flags().String("dest", "", "archive file path (default: sibling <source-dir>.<format>)")
	archiveCmd.Flags().Duration("timeout", toolrun.DefaultTimeout, "7z invocation timeout")

	rootCmd.AddCommand(archiveCmd)
}
