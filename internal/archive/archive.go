// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive packages a batch output directory into a single archive
// file. zip and tar.gz are written in-process; 7z shells out to the external
// 7z executable. The source directory is never modified or deleted.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfwork/internal/toolrun"
)

// Format identifies an archive container type.
type Format string

const (
	FormatZip      Format = "zip"
	FormatSevenZip Format = "7z"
	FormatTarGz    Format = "tar.gz"
)

// ParseFormat validates an archive format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatZip, FormatSevenZip, FormatTarGz:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported archive format %q: use zip, 7z, or tar.gz", s)
}

// ArchiveError wraps any failure while producing an archive.
type ArchiveError struct {
	Format Format
	Path   string
	Err    error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archiving to %s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// Result describes a produced archive.
type Result struct {
	Path   string
	Format Format
	Files  int
	Bytes  int64
}

// Invoker runs the external 7z executable. Satisfied by *toolrun.Runner.
type Invoker interface {
	Run(ctx context.Context, tool toolrun.Tool, args []string) (toolrun.Result, error)
}

// Archiver packages directories. The Invoker is needed only for 7z.
type Archiver struct {
	Invoker Invoker
}

// Archive packages srcDir's contents into destPath. Regular files only;
// arcnames are relative to srcDir so the archive reproduces the tree.
func (a *Archiver) Archive(ctx context.Context, srcDir string, format Format, destPath string) (Result, error) {
	info, err := os.Stat(srcDir)
	if err != nil || !info.IsDir() {
		return Result{}, &ArchiveError{Format: format, Path: destPath,
			Err: fmt.Errorf("source is not a directory: %s", srcDir)}
	}

	var files int
	switch format {
	case FormatZip:
		files, err = a.writeLocal(srcDir, destPath, writeZip)
	case FormatTarGz:
		files, err = a.writeLocal(srcDir, destPath, writeTarGz)
	case FormatSevenZip:
		files, err = a.writeSevenZip(ctx, srcDir, destPath)
	default:
		err = fmt.Errorf("unsupported archive format %q", format)
	}
	if err != nil {
		return Result{}, &ArchiveError{Format: format, Path: destPath, Err: err}
	}

	out, err := os.Stat(destPath)
	if err != nil {
		return Result{}, &ArchiveError{Format: format, Path: destPath, Err: err}
	}
	return Result{Path: destPath, Format: format, Files: files, Bytes: out.Size()}, nil
}

// writeLocal writes the archive to a temp file next to the destination and
// renames it into place on success, so a failed run never leaves a partial
// archive at destPath.
func (a *Archiver) writeLocal(srcDir, destPath string, write func(io.Writer, string) (int, error)) (int, error) {
	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(destDir, ".pdfwork-archive-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	files, err := write(tmp, srcDir)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return 0, fmt.Errorf("renaming into place: %w", err)
	}
	return files, nil
}

func writeZip(w io.Writer, srcDir string) (int, error) {
	zw := zip.NewWriter(w)
	files := 0

	err := walkFiles(srcDir, func(path, rel string, info fs.FileInfo) error {
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("header for %s: %w", rel, err)
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		dst, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("creating entry %s: %w", rel, err)
		}
		if err := copyFile(dst, path); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return files, zw.Close()
}

func writeTarGz(w io.Writer, srcDir string) (int, error) {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	files := 0

	err := walkFiles(srcDir, func(path, rel string, info fs.FileInfo) error {
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("header for %s: %w", rel, err)
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing header %s: %w", rel, err)
		}
		if err := copyFile(tw, path); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := tw.Close(); err != nil {
		return 0, err
	}
	return files, gz.Close()
}

// writeSevenZip shells out: 7z a -t7z <dest> <srcDir>. 7z refuses to update
// an existing archive of another type, so a stale destination is removed
// first.
func (a *Archiver) writeSevenZip(ctx context.Context, srcDir, destPath string) (int, error) {
	if a.Invoker == nil {
		return 0, fmt.Errorf("7z support requires an external tool invoker")
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("removing stale archive: %w", err)
	}

	res, err := a.Invoker.Run(ctx, toolrun.ToolSevenZip, []string{"a", "-t7z", destPath, srcDir})
	if err != nil {
		return 0, err
	}
	if res.ExitCode != 0 {
		return 0, &toolrun.ExitError{
			Tool:     toolrun.ToolSevenZip,
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(res.Stderr),
		}
	}

	files := 0
	err = walkFiles(srcDir, func(string, string, fs.FileInfo) error {
		files++
		return nil
	})
	return files, err
}

// walkFiles visits the regular files under root in lexicographic order.
func walkFiles(root string, fn func(path, rel string, info fs.FileInfo) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		return fn(path, rel, info)
	})
}

func copyFile(dst io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("copying %s: %w", path, err)
	}
	return nil
}
