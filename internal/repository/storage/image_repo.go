package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ImageRepository defines the interface for receipt image storage operations
type ImageRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GenerateURL(objectPath string) string
}

// FilesystemImageRepository implements ImageRepository on the local
// filesystem, keeping receipt images next to the JSON data files.
type FilesystemImageRepository struct {
	baseDir string
	baseURL string
}

// NewFilesystemImageRepository creates a repository rooted at baseDir.
// Stored objects are served under baseURL (e.g. "/images").
func NewFilesystemImageRepository(baseDir, baseURL string) (*FilesystemImageRepository, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &FilesystemImageRepository{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// BaseDir returns the directory images are stored under
func (r *FilesystemImageRepository) BaseDir() string {
	return r.baseDir
}

func (r *FilesystemImageRepository) resolve(objectPath string) (string, error) {
	cleaned := path.Clean("/" + objectPath)
	full := filepath.Join(r.baseDir, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(full, filepath.Clean(r.baseDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return full, nil
}

// Upload writes an object and returns its URL
func (r *FilesystemImageRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	full, err := r.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	log.Debug().Str("path", objectPath).Int64("size", size).Msg("Image stored")
	return r.GenerateURL(objectPath), nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (r *FilesystemImageRepository) Delete(ctx context.Context, objectPath string) error {
	full, err := r.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GenerateURL returns the serving URL for an object path
func (r *FilesystemImageRepository) GenerateURL(objectPath string) string {
	return r.baseURL + "/" + strings.TrimLeft(path.Clean("/"+objectPath), "/")
}

// DeleteByURL removes an object given its serving URL. URLs outside the
// repository's base URL are ignored.
func (r *FilesystemImageRepository) DeleteByURL(ctx context.Context, imageURL string) error {
	prefix := r.baseURL + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return nil
	}
	return r.Delete(ctx, strings.TrimPrefix(imageURL, prefix))
}
