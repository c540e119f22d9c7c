package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Target is the drawable surface a chart instance is bound to.
type Target interface {
	ID() string
	Draw(png []byte) error
	Clear() error
}

// Snapshotter exposes the currently drawn image, if any.
type Snapshotter interface {
	Snapshot() ([]byte, bool)
}

// MemoryTarget keeps the last drawn PNG in memory.
type MemoryTarget struct {
	id  string
	mu  sync.RWMutex
	img []byte
}

func NewMemoryTarget(id string) *MemoryTarget { return &MemoryTarget{id: id} }

func (t *MemoryTarget) ID() string { return t.id }

func (t *MemoryTarget) Draw(png []byte) error {
	buf := make([]byte, len(png))
	copy(buf, png)
	t.mu.Lock()
	t.img = buf
	t.mu.Unlock()
	return nil
}

func (t *MemoryTarget) Clear() error {
	t.mu.Lock()
	t.img = nil
	t.mu.Unlock()
	return nil
}

func (t *MemoryTarget) Snapshot() ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.img == nil {
		return nil, false
	}
	return t.img, true
}

// FileTarget writes the chart to a PNG file on disk.
type FileTarget struct {
	path string
	mu   sync.Mutex
}

func NewFileTarget(path string) *FileTarget { return &FileTarget{path: path} }

func (t *FileTarget) ID() string { return "file:" + t.path }

// Draw writes to a temp file and renames it over the target so readers never
// see a partial image.
func (t *FileTarget) Draw(png []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".chart-*.png")
	if err != nil {
		return fmt.Errorf("create temp chart: %w", err)
	}
	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write chart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close chart: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename chart: %w", err)
	}
	return nil
}

func (t *FileTarget) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := os.Remove(t.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove chart: %w", err)
	}
	return nil
}

func (t *FileTarget) Snapshot() ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, false
	}
	return data, true
}
