package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/gcp"
	"github.com/yungbote/scandine-backend/internal/platform/imaging"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

func productKeyPrefix(shopID uuid.UUID) string { return fmt.Sprintf("products/%s/", shopID) }
func logoKeyPrefix(shopID uuid.UUID) string    { return fmt.Sprintf("logos/%s/", shopID) }

// media wraps the bucket so a nil bucket (storage disabled) degrades to clear errors on
// upload and no-ops on delete.
type media struct {
	log    *logger.Logger
	bucket gcp.BucketService
}

var errStorageDisabled = apierr.New(http.StatusServiceUnavailable, "storage_disabled", errors.New("image uploads are disabled on this server"))

func (m media) put(ctx context.Context, category gcp.BucketCategory, key string, data []byte) (string, error) {
	if m.bucket == nil {
		return "", errStorageDisabled
	}
	if err := m.bucket.UploadFile(ctx, category, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return m.bucket.GetPublicURL(category, key), nil
}

// dropOwned deletes key only when it lives under prefix; external URLs and
// placeholders never carry such a key.
func (m media) dropOwned(ctx context.Context, category gcp.BucketCategory, prefix, key string) {
	key = strings.TrimSpace(key)
	if m.bucket == nil || key == "" || !strings.HasPrefix(key, prefix) {
		return
	}
	if err := m.bucket.DeleteFile(ctx, category, key); err != nil && !errors.Is(err, gcp.ErrObjectNotFound) {
		m.log.Warn("Failed to delete old object (ignored)", "key", key, "error", err)
	}
}

func (m media) dropPrefix(ctx context.Context, category gcp.BucketCategory, prefix string) error {
	if m.bucket == nil {
		return nil
	}
	return m.bucket.DeletePrefix(ctx, category, prefix)
}

func processImage(raw []byte, fn func([]byte) ([]byte, error)) ([]byte, error) {
	if len(raw) > imaging.MaxUploadBytes {
		return nil, apierr.TooLarge("image_too_large", fmt.Sprintf("image exceeds %d MB", imaging.MaxUploadBytes>>20))
	}
	out, err := fn(raw)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return nil, apierr.New(http.StatusBadRequest, "invalid_image", err)
		}
		return nil, fmt.Errorf("process image: %w", err)
	}
	return out, nil
}
