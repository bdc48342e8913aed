// Package publish persists a rendered feed document. The write is
// staged through a temp file and renamed into place, so a reader of
// the published path never sees a partial document.
package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// File publishes documents to a fixed path on disk, wholesale.
type File struct {
	path string

	published atomic.Bool
}

func NewFile(path string) *File {
	f := &File{path: path}
	if _, err := os.Stat(path); err == nil {
		// A document from a previous run still counts as published.
		f.published.Store(true)
	}

	return f
}

// Path is where the current document lives.
func (f *File) Path() string { return f.path }

// Published reports whether a document is available at Path.
func (f *File) Published() bool { return f.published.Load() }

// Publish replaces the document. On any error the previous document is
// left untouched.
func (f *File) Publish(body []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating output dir: %w", err)
	}

	// Stage in the same directory so the rename is atomic.
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("error staging feed file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing feed file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error syncing feed file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing feed file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("error publishing feed file: %w", err)
	}
	f.published.Store(true)

	return nil
}
