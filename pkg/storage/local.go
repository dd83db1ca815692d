package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below a directory that the HTTP server exposes at baseURL
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Store writes the content to root/objectPath and returns baseURL/objectPath
func (s *LocalStore) Store(ctx context.Context, objectPath string, content io.Reader, contentType string) (string, error) {
	clean := path.Clean("/" + objectPath)
	target := filepath.Join(s.root, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", objectPath, err)
	}

	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", target, err)
	}

	return s.baseURL + clean, nil
}
