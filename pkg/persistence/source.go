package persistence

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// Source is a named durable location holding one whole record.
//
// ReadAll must return an error matching fs.ErrNotExist when nothing has been
// stored yet. WriteAll must either replace the content completely or leave the
// previous content intact.
type Source interface {
	Name() string
	ReadAll() ([]byte, error)
	WriteAll(data []byte) error
}

// FileSource stores the record in a single file on the local filesystem.
type FileSource struct {
	mu   sync.Mutex
	path string
}

// NewFileSource returns a Source backed by the file at path. The file does not
// need to exist.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path.
func (f *FileSource) Name() string {
	return f.path
}

// ReadAll returns the file content.
func (f *FileSource) ReadAll() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return os.ReadFile(f.path)
}

// WriteAll replaces the file atomically: the data goes to a temporary file in
// the same directory, is synced, and is then renamed over the target. The
// directory is synced last so the new name is durable.
func (f *FileSource) WriteAll(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(f.path), uuid.New().String()))

	// 1. Write temp
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// 2. Sync & Close
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// 3. Rename
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}

	// 4. Sync the directory so the rename survives a crash
	if err := syncDir(dir); err != nil {
		return fmt.Errorf("failed to sync directory %s: %w", dir, err)
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil && runtime.GOOS != "windows" {
		return err
	}
	return nil
}

// MemorySource keeps the record in memory. The zero value is an empty source.
type MemorySource struct {
	mu   sync.Mutex
	name string
	data []byte
	set  bool
}

// NewMemorySource returns an empty in-memory Source.
func NewMemorySource(name string) *MemorySource {
	return &MemorySource{name: name}
}

func (m *MemorySource) Name() string {
	return m.name
}

func (m *MemorySource) ReadAll() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, fmt.Errorf("memory source %q: %w", m.name, fs.ErrNotExist)
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemorySource) WriteAll(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}
