package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorage_Save(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStorage(dir, "")

	url, err := s.Save(context.Background(), strings.NewReader("pngbytes"), "avatar.PNG", "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"), "url %q should be under /uploads", url)
	assert.True(t, strings.HasSuffix(url, ".png"), "extension should be lowercased: %q", url)

	name := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "pngbytes", string(data))
}

func TestDiskStorage_SaveWithBaseURL(t *testing.T) {
	s := NewDiskStorage(t.TempDir(), "https://cdn.example.com")

	url, err := s.Save(context.Background(), strings.NewReader("x"), "a.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/uploads/"), url)
}

func TestDiskStorage_ConcurrentNamesDiffer(t *testing.T) {
	s := NewDiskStorage(t.TempDir(), "")

	first, err := s.Save(context.Background(), strings.NewReader("one"), "same.png", "image/png")
	require.NoError(t, err)
	second, err := s.Save(context.Background(), strings.NewReader("two"), "same.png", "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDiskStorage_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	s := NewDiskStorage(dir, "")

	_, err := s.Save(context.Background(), strings.NewReader("x"), "a.png", "image/png")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestObjectName_KeepsExtension(t *testing.T) {
	assert.True(t, strings.HasSuffix(ObjectName("Photo.JPEG"), ".jpeg"))
	assert.False(t, strings.Contains(ObjectName("no-extension"), "."))
}
