package playlistfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// atomicWriter writes to a temp file in the target directory and renames it
// over the target on commit, so a crash never leaves a half-written file.
type atomicWriter struct {
	path    string
	tmpPath string
	file    *os.File
}

func newAtomicWriter(path string) (*atomicWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tubeq-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &atomicWriter{path: path, tmpPath: tmp.Name(), file: tmp}, nil
}

func (w *atomicWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

func (w *atomicWriter) commit() error {
	if err := w.file.Sync(); err != nil {
		w.abort()
		return fmt.Errorf("sync: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (w *atomicWriter) abort() {
	w.file.Close()
	os.Remove(w.tmpPath)
}
