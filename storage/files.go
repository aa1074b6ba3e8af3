package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStore persists uploaded request files on local disk. Each version of
// a logical file gets its own path, so prior versions survive re-uploads.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir, creating it if needed
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("file store base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create file store directory: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Save writes the content of a single file version and returns its storage
// path relative to the store root. uniqueName must be unique per upload
// (the caller prefixes the attachment ID) so prior versions are never
// overwritten.
func (s *FileStore) Save(requestID, kind, uniqueName string, content io.Reader) (string, error) {
	relPath := filepath.Join(requestID, kind, filepath.Base(uniqueName))
	fullPath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, content); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return relPath, nil
}

// Open returns a reader over a stored file
func (s *FileStore) Open(relPath string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.baseDir, relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}

// ReadAll returns the full content of a stored file
func (s *FileStore) ReadAll(relPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return data, nil
}
