// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enumerate walks a batch root directory and yields the candidate
// files in deterministic order. Traversal is read-only and restartable:
// every call re-walks the tree.
package enumerate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfwork/pkg/types"
)

// defaultExtension is matched when a Source does not name one.
const defaultExtension = ".pdf"

// NotFoundError reports a batch root that does not exist or is not a
// directory. It is the only error the enumerator produces.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("directory not found: %s", e.Path)
}

// Source describes one enumeration: a root directory, a target extension,
// and whether to descend into subdirectories.
type Source struct {
	Root      string
	Extension string
	Recursive bool
}

// Entry is one matching file. AbsPath is absolute; RelPath is relative to
// the root and preserves the subtree structure for output mirroring.
type Entry struct {
	AbsPath string
	RelPath string
}

// Paths walks the source root and returns matching regular files in
// lexicographic path order. Extension matching is case-insensitive; symlinks
// and directories are skipped.
func (s Source) Paths() ([]Entry, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", s.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Path: s.Root}
	}

	ext := s.Extension
	if ext == "" {
		ext = defaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	ext = strings.ToLower(ext)

	if !s.Recursive {
		return readFlat(root, ext)
	}
	return walk(root, ext)
}

func readFlat(root, ext string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", root, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || !matches(de.Name(), ext) {
			continue
		}
		entries = append(entries, Entry{
			AbsPath: filepath.Join(root, de.Name()),
			RelPath: de.Name(),
		})
	}
	return entries, nil
}

func walk(root, ext string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !matches(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		entries = append(entries, Entry{AbsPath: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return entries, nil
}

func matches(name, ext string) bool {
	return strings.ToLower(filepath.Ext(name)) == ext
}

// Tasks enumerates the source and wraps each entry as a FileTask for the
// given operation, with indices preserving enumeration order.
func Tasks(s Source, op types.Operation, cfg types.OperationConfig) ([]types.FileTask, error) {
	entries, err := s.Paths()
	if err != nil {
		return nil, err
	}

	tasks := make([]types.FileTask, len(entries))
	for i, e := range entries {
		tasks[i] = types.FileTask{
			Index:      i,
			SourcePath: e.AbsPath,
			RelPath:    e.RelPath,
			Operation:  op,
			Config:     cfg,
		}
	}
	return tasks, nil
}
