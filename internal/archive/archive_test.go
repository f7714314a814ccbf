// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfwork/internal/toolrun"
)

// setupSource builds a small output tree with a nested subdirectory.
func setupSource(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))

	files := map[string]string{
		"a.pdf":                      "compressed a",
		"b.txt":                      "extracted text",
		filepath.Join("sub", "c.pdf"): "compressed c",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(content), 0o644))
	}
	return src
}

func TestArchiveZip(t *testing.T) {
	src := setupSource(t)
	dest := filepath.Join(t.TempDir(), "out.zip")

	res, err := (&Archiver{}).Archive(context.Background(), src, FormatZip, dest)
	require.NoError(t, err)

	assert.Equal(t, dest, res.Path)
	assert.Equal(t, 3, res.Files)
	assert.Greater(t, res.Bytes, int64(0))

	// The archive lists the source tree back with relative names.
	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.pdf", "b.txt", "sub/c.pdf"}, names)
}

func TestArchiveTarGz(t *testing.T) {
	src := setupSource(t)
	dest := filepath.Join(t.TempDir(), "out.tar.gz")

	res, err := (&Archiver{}).Archive(context.Background(), src, FormatTarGz, dest)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Files)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.pdf", "b.txt", "sub/c.pdf"}, names)
}

func TestArchiveDoesNotTouchSource(t *testing.T) {
	src := setupSource(t)
	dest := filepath.Join(t.TempDir(), "out.zip")

	_, err := (&Archiver{}).Archive(context.Background(), src, FormatZip, dest)
	require.NoError(t, err)

	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	assert.Len(t, entries, 3) // a.pdf, b.txt, sub/
}

func TestArchiveMissingSource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.zip")
	_, err := (&Archiver{}).Archive(context.Background(),
		filepath.Join(t.TempDir(), "nope"), FormatZip, dest)

	var ae *ArchiveError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, FormatZip, ae.Format)

	// No partial archive left behind.
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

// sevenZipInvoker fakes the external 7z run.
type sevenZipInvoker struct {
	exitCode int
	args     []string
}

func (s *sevenZipInvoker) Run(_ context.Context, tool toolrun.Tool, args []string) (toolrun.Result, error) {
	s.args = append([]string{string(tool)}, args...)
	if s.exitCode != 0 {
		return toolrun.Result{ExitCode: s.exitCode, Stderr: "7z: cannot open"}, nil
	}
	// 7z writes the destination itself; args are [a -t7z dest src].
	if err := os.WriteFile(args[2], []byte("7z archive"), 0o644); err != nil {
		return toolrun.Result{}, err
	}
	return toolrun.Result{ExitCode: 0}, nil
}

func TestArchiveSevenZip(t *testing.T) {
	src := setupSource(t)
	dest := filepath.Join(t.TempDir(), "out.7z")
	inv := &sevenZipInvoker{}

	res, err := (&Archiver{Invoker: inv}).Archive(context.Background(), src, FormatSevenZip, dest)
	require.NoError(t, err)

	assert.Equal(t, []string{"7z", "a", "-t7z", dest, src}, inv.args)
	assert.Equal(t, 3, res.Files)
}

func TestArchiveSevenZipFailure(t *testing.T) {
	src := setupSource(t)
	dest := filepath.Join(t.TempDir(), "out.7z")

	_, err := (&Archiver{Invoker: &sevenZipInvoker{exitCode: 2}}).
		Archive(context.Background(), src, FormatSevenZip, dest)

	var ae *ArchiveError
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Error(), "exited with code 2")
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"zip", "7z", "tar.gz"} {
		f, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), f)
	}

	_, err := ParseFormat("rar")
	assert.Error(t, err)
}
