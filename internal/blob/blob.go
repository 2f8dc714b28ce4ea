// Package blob abstracts file storage for uploaded documents (fiches
// techniques, signatures, photos). The production deployment can swap the
// disk implementation for an object store without touching handlers.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded files and returns stable URLs.
type Store interface {
	// Store writes the file content and returns its public URL.
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
	// Delete removes a previously stored file by its URL. Deleting an
	// unknown URL is not an error.
	Delete(ctx context.Context, url string) error
}

// DiskStore keeps files in a local directory served under BaseURL.
type DiskStore struct {
	Dir     string
	BaseURL string
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store writes the content under a uuid-prefixed name so uploads with the
// same original filename never collide.
func (s *DiskStore) Store(_ context.Context, filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + "-" + sanitize(filename)
	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write blob file: %w", err)
	}
	return s.BaseURL + "/" + name, nil
}

// Delete removes the file referenced by the URL.
func (s *DiskStore) Delete(_ context.Context, url string) error {
	name := strings.TrimPrefix(url, s.BaseURL+"/")
	if name == url || name == "" || strings.Contains(name, "/") {
		// Not one of ours; ignore.
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob file: %w", err)
	}
	return nil
}

func sanitize(filename string) string {
	base := filepath.Base(filename)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
}
