// package services defines interface StorageService for remote file storage APIs
//
// Google Drive
package services

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/desertthunder/drivebox/internal/models"
)

// DefaultMimeType is submitted for uploads that aren't recognized video containers.
const DefaultMimeType = "image/jpeg"

// ListedMimeTypes is the default filter for listings: the media types the
// front-end knows how to render.
var ListedMimeTypes = []string{"image/jpeg", "image/png", "video/mp4"}

// StorageService defines the interface for remote file storage providers that
// can upload, list, and stream files on behalf of an authorized user.
type StorageService interface {
	// Upload submits content under the given name and returns the
	// remote-assigned file metadata.
	Upload(ctx context.Context, name string, content []byte) (*models.RemoteFile, error)

	// List retrieves files matching the given MIME types, in the remote
	// API's native order. An empty filter uses ListedMimeTypes.
	List(ctx context.Context, mimeTypes ...string) ([]models.RemoteFile, error)

	// Download returns the remote file's raw content as a stream.
	// The stream is finite and not restartable; the caller must close it.
	Download(ctx context.Context, fileID string) (*models.FileStream, error)

	// Name returns the name of the provider (e.g., "Google Drive")
	Name() string
}

// InferMimeType maps a file name to the MIME type submitted with its upload.
//
// Deliberate simplification, not a general sniffer: an .mp4 extension means
// video/mp4 and anything else falls back to fallback (DefaultMimeType when
// fallback is empty).
func InferMimeType(name, fallback string) string {
	if fallback == "" {
		fallback = DefaultMimeType
	}
	if strings.EqualFold(filepath.Ext(name), ".mp4") {
		return "video/mp4"
	}
	return fallback
}
