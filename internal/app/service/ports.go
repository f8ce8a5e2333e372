package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/imageproc"
	"github.com/ikkim/photoshare-backend/internal/storage"
	"github.com/ikkim/photoshare-backend/pkg/logger"
)

var ErrInvalidImage = errors.New("file is not a supported image")

// ImageStorage is the image host. Implemented by storage.S3Storage and
// storage.MemoryStorage.
type ImageStorage interface {
	Upload(ctx context.Context, folder string, data []byte, contentType string) (*storage.Asset, error)
	Download(ctx context.Context, publicID string) ([]byte, error)
	Delete(ctx context.Context, publicID string) error
	PresignGet(ctx context.Context, publicID string, ttl time.Duration) (string, error)
}

// TokenBlacklist remembers revoked access tokens by jti
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RateLimiter answers whether key may perform one more action
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Comment feed event types
const (
	CommentCreated = "created"
	CommentUpdated = "updated"
	CommentDeleted = "deleted"
)

// CommentNotifier pushes comment events to live subscribers of a photo
type CommentNotifier interface {
	NotifyComment(photoID uint, event string, comment *model.Comment)
}

// deleteAssets removes stored objects, logging failures instead of returning them
func deleteAssets(ctx context.Context, store ImageStorage, publicIDs ...string) {
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			logger.Warn("Failed to delete asset from image host", map[string]interface{}{
				"public_id": id,
				"error":     err.Error(),
			})
		}
	}
}

// prepareImage checks that data is a supported image and bakes in the EXIF
// orientation of JPEGs
func prepareImage(data []byte) ([]byte, string, error) {
	contentType, err := storage.DetectImageType(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if contentType == "image/jpeg" {
		oriented, err := imageproc.AutoOrient(data)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		data = oriented
	}
	return data, contentType, nil
}
