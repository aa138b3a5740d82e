package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Table handles storage for a single table persisted as a JSON array file.
//
// There is no in-memory caching: every Load re-reads the file, so a Load
// always observes the latest committed Save. Callers perform their own
// load-modify-save cycles; the table does not serialize those cycles, only
// the file replacement itself is atomic.
type Table[T any] struct {
	path string

	// mu serializes concurrent Saves so their temp files cannot race the
	// rename. It intentionally does not cover Load-to-Save windows.
	mu sync.Mutex
}

// NewTable creates a Table backed by the file at path.
func NewTable[T any](path string) (*Table[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return &Table[T]{path: path}, nil
}

// Path returns the backing file path.
func (t *Table[T]) Path() string {
	return t.path
}

// Load reads and decodes all rows. A missing or blank file yields an empty
// slice; the file itself is only created by the first Save.
func (t *Table[T]) Load() ([]T, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table file %s: %w", t.path, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// Save replaces the table content with rows. The new content is written to
// a temp file in the same directory, synced, then renamed over the target,
// so a crash mid-write never leaves a torn file behind: readers see either
// the previous content or the new content, nothing in between.
func (t *Table[T]) Save(rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal table rows: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.CreateTemp(filepath.Dir(t.path), filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", t.path, err)
	}
	tmpPath := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.Join(fmt.Errorf("failed to write temp file: %w", err), os.Remove(tmpPath))
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.Join(fmt.Errorf("failed to sync temp file: %w", err), os.Remove(tmpPath))
	}
	if err := f.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		return errors.Join(fmt.Errorf("failed to rename temp file over %s: %w", t.path, err), os.Remove(tmpPath))
	}
	return nil
}
