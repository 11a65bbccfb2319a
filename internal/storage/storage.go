package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPresignedURLExpiry bounds how long an upload or download link stays valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrUnsupportedContentType = errors.New("unsupported content type")

// imageExtensions lists the content types the mural accepts.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FileStorage is the object storage used for mural images.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a URL the browser PUTs the file to directly.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)
	// GeneratePresignedDownloadURL returns a temporary GET URL for objectKey.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// NewImageKey builds a unique key such as mural/<owner>/<uuid>.png.
func NewImageKey(prefix, owner, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return path.Join(prefix, owner, uuid.NewString()+ext), nil
}

// OwnsKey reports whether objectKey was issued under prefix for owner.
func OwnsKey(prefix, owner, objectKey string) bool {
	return strings.HasPrefix(objectKey, path.Join(prefix, owner)+"/")
}
