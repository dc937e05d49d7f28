// Package storage persists uploaded profile and blog images. Object names
// are always server-generated (uuid + original extension) so concurrent
// uploads can never collide.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage saves an uploaded file and returns its public URL.
type Storage interface {
	Save(ctx context.Context, r io.Reader, originalFileName, contentType string) (string, error)
}

// ObjectName builds a collision-resistant name keeping the original extension.
func ObjectName(originalFileName string) string {
	ext := strings.ToLower(filepath.Ext(originalFileName))
	return uuid.NewString() + ext
}
