package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/errors"
)

// File keeps the diagram in a JSON file. A missing file is an empty store.
type File struct {
	Subscribers

	mu   sync.RWMutex
	path string
}

// NewFile creates a store backed by path. The parent directory is created if
// needed.
func NewFile(path string) (*File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

// Current implements Store.
func (f *File) Current(context.Context) (*diagram.Model, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.read()
}

func (f *File) read() (*diagram.Model, error) {
	d, err := diagram.ReadFile(f.path)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, nil
	}
	return d, err
}

// Set implements Store. The file is replaced atomically.
func (f *File) Set(ctx context.Context, d *diagram.Model) error {
	if d == nil {
		return f.Clear(ctx)
	}

	f.mu.Lock()
	previous, err := f.read()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	stored := Prepare(d, previous)
	err = f.write(stored)
	f.mu.Unlock()
	if err != nil {
		return err
	}

	f.Publish(ctx, stored)
	return nil
}

func (f *File) write(d *diagram.Model) error {
	data, err := diagram.Marshal(d)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".diagram-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write diagram: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write diagram: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Clear implements Store by removing the file.
func (f *File) Clear(ctx context.Context) error {
	f.mu.Lock()
	err := os.Remove(f.path)
	f.mu.Unlock()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", f.path, err)
	}

	f.Publish(ctx, nil)
	return nil
}
