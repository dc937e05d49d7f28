package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
)

// DiskStorage writes uploads to a local directory served under /uploads.
type DiskStorage struct {
	Dir     string // filesystem directory, created on first save if absent
	BaseURL string // optional public prefix, e.g. https://cdn.example.com
}

func NewDiskStorage(dir, baseURL string) *DiskStorage {
	return &DiskStorage{Dir: dir, BaseURL: baseURL}
}

func (s *DiskStorage) Save(ctx context.Context, r io.Reader, originalFileName, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	name := ObjectName(originalFileName)
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.BaseURL + path.Join("/uploads", name), nil
}

var _ Storage = (*DiskStorage)(nil)
