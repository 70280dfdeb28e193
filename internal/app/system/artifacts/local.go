// internal/app/system/artifacts/local.go
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
)

// ErrBadPath is returned for storage paths that escape the base
// directory.
var ErrBadPath = errors.New("invalid storage path")

// LocalStore is a filesystem-backed BlobStore rooted at a base
// directory. Paths are slash-separated and relative to the root.
type LocalStore struct {
	base string
}

// NewLocalStore creates the base directory if needed and returns a
// store rooted there.
func NewLocalStore(base string) (*LocalStore, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}
	return &LocalStore{base: abs}, nil
}

// Put writes the blob to disk, creating parent directories as needed.
func (s *LocalStore) Put(_ context.Context, path string, r io.Reader, _ *storage.PutOptions) error {
	full, err := s.GetFullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	f, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return err
	}
	return f.Close()
}

// Delete removes the blob. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, path string) error {
	full, err := s.GetFullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// GetFullPath resolves a storage path to an absolute filesystem path,
// refusing anything that would land outside the root.
func (s *LocalStore) GetFullPath(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrBadPath
	}
	return filepath.Join(s.base, clean), nil
}
