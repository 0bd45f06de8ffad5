// Package blob provides filesystem storage for uploaded invoice documents.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"facturo/internal/core/apperror"
)

// Store persists uploaded files under a root directory.
type Store struct {
	root string
}

// NewStore creates a blob store rooted at dir.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Save writes the file under targetDir (relative to the root), creating the
// directory if absent. Collisions are avoided with a timestamp prefix, so two
// uploads of "invoice.pdf" never overwrite each other.
func (s *Store) Save(data []byte, targetDir, filename string) (string, error) {
	dir := filepath.Join(s.root, targetDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitize(filename))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return path, nil
}

// Read returns the stored bytes for a path previously returned by Save.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NewNotFound("file", path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// sanitize strips path separators from client-supplied filenames.
func sanitize(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "upload"
	}
	return name
}
