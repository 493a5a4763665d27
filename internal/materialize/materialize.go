// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package materialize writes rendered documents into the output tree,
// touching a file only when its content changes.
package materialize

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/handbook-sync/pkg/types"
)

// Extension is appended to every resolved path.
const Extension = ".md"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// DirectoryError reports a failure to create or clear a directory.
type DirectoryError struct {
	Op   string
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("%s directory %s: %v", e.Op, e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// FileIOError reports a read or write failure other than a missing file.
type FileIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileIOError) Unwrap() error { return e.Err }

// Writer materializes documents under Root.
type Writer struct {
	Root string
}

// New returns a Writer rooted at dir.
func New(dir string) *Writer {
	return &Writer{Root: dir}
}

// Clear removes the whole output tree. A missing directory is not an error.
func (w *Writer) Clear() error {
	if err := os.RemoveAll(w.Root); err != nil {
		return &DirectoryError{Op: "clearing", Path: w.Root, Err: err}
	}
	return nil
}

// EnsureRoot creates the output directory and any missing parents.
func (w *Writer) EnsureRoot() error {
	if err := os.MkdirAll(w.Root, dirPerm); err != nil {
		return &DirectoryError{Op: "creating", Path: w.Root, Err: err}
	}
	return nil
}

// FilePath returns the on-disk path for a slash-separated resolved path.
func (w *Writer) FilePath(resolved string) string {
	return filepath.Join(w.Root, filepath.FromSlash(resolved)+Extension)
}

// Write ensures the file for resolved holds exactly doc. It creates the
// parent directory on demand, then reports OutcomeCreated when the file was
// absent, OutcomeSkipped when it already matched, and OutcomeUpdated when it
// was overwritten. Only a missing file is tolerated on read; every other
// I/O failure is returned.
func (w *Writer) Write(resolved, doc string) (types.Outcome, error) {
	path := w.FilePath(resolved)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", &DirectoryError{Op: "creating", Path: dir, Err: err}
	}

	want := []byte(doc)
	outcome := types.OutcomeUpdated

	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		outcome = types.OutcomeCreated
	case err != nil:
		return "", &FileIOError{Op: "reading", Path: path, Err: err}
	case bytes.Equal(existing, want):
		return types.OutcomeSkipped, nil
	}

	if err := os.WriteFile(path, want, filePerm); err != nil {
		return "", &FileIOError{Op: "writing", Path: path, Err: err}
	}
	return outcome, nil
}
