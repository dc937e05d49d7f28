package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage uploads into a Google Cloud Storage bucket. Selected with
// STORAGE_BACKEND=gcs; disk is the default backend.
type GCSStorage struct {
	Client *gstorage.Client
	Bucket string
	Prefix string // object path prefix, e.g. "uploads"
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty,
// Application Default Credentials are used.
func NewGCSClient(ctx context.Context, credsPath string) (*gstorage.Client, error) {
	if credsPath == "" {
		return gstorage.NewClient(ctx)
	}
	return gstorage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCSStorage(client *gstorage.Client, bucket string) *GCSStorage {
	return &GCSStorage{Client: client, Bucket: bucket, Prefix: "uploads"}
}

func (s *GCSStorage) Save(ctx context.Context, r io.Reader, originalFileName, contentType string) (string, error) {
	objectPath := path.Join(s.Prefix, ObjectName(originalFileName))

	wc := s.Client.Bucket(s.Bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return publicURL(s.Bucket, objectPath), nil
}

// publicURL builds a public URL for an object (assuming public read access or
// signed URLs).
func publicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

var _ Storage = (*GCSStorage)(nil)
