// Package photos stores uploaded profile photos and returns the reference
// kept on the user record.
package photos

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/baharkarakas/librarium/internal/config"
)

type Store interface {
	// Put writes body under key and returns the stored reference.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Accepted reports whether contentType is an allowed photo type.
func Accepted(contentType string) bool {
	_, ok := extensions[contentType]
	return ok
}

// Key builds a fresh object key: profiles/<userID>/<uuid><ext>.
func Key(userID int64, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported photo type %q", contentType)
	}
	return "profiles/" + strconv.FormatInt(userID, 10) + "/" + uuid.NewString() + ext, nil
}

// New picks the backend named by cfg.PhotoStore.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.PhotoStore {
	case "", "fs":
		return NewFS(cfg.PhotoDir), nil
	case "s3":
		return NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
	default:
		return nil, fmt.Errorf("unknown PHOTO_STORE %q", cfg.PhotoStore)
	}
}
