// internal/storage/local.go

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PublicPrefix is the URL path local uploads are served under
const PublicPrefix = "/uploads/"

// LocalStore writes uploads below a directory served by the API itself
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Save(ctx context.Context, folder string, u Upload) (string, error) {
	name := objectName(folder, u.Filename, time.Now())
	path := filepath.Join(s.dir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, u.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return s.baseURL + PublicPrefix + name, nil
}

// Delete removes a file previously returned by Save. Missing files are not an error.
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	idx := strings.Index(url, PublicPrefix)
	if idx < 0 {
		return fmt.Errorf("not a local upload url: %s", url)
	}
	rel := url[idx+len(PublicPrefix):]
	if strings.Contains(rel, "..") {
		return fmt.Errorf("invalid upload path: %s", rel)
	}

	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Dir is the directory to serve under PublicPrefix
func (s *LocalStore) Dir() string {
	return s.dir
}
