package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ObjectStore is the bucket uploaded images end up in.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Upload(ctx context.Context, key string, contentType string, r io.Reader) error
	PublicURL(key string) string
}

// ImageFile is a file picked by the user.
type ImageFile struct {
	Name string
	Body io.Reader
}

type ImageUploader struct {
	store    ObjectStore
	maxBytes int64
	newID    func() string
}

func NewImageUploader(store ObjectStore, maxBytes int64) *ImageUploader {
	return &ImageUploader{
		store:    store,
		maxBytes: maxBytes,
		newID:    uuid.NewString,
	}
}

// UploadImage stores the file under a fresh key and returns its public URL.
// Nothing links the URL to an app; callers do that.
func (u *ImageUploader) UploadImage(ctx context.Context, file *ImageFile) (string, error) {
	if file == nil || file.Body == nil || file.Name == "" {
		return "", domain.NewValidationError("select an image to upload")
	}
	data, err := io.ReadAll(io.LimitReader(file.Body, u.maxBytes+1))
	if err != nil {
		return "", domain.NewUploadError("failed to read image", err)
	}
	if len(data) == 0 {
		return "", domain.NewValidationError("select an image to upload")
	}
	if int64(len(data)) > u.maxBytes {
		return "", domain.NewValidationError(fmt.Sprintf("image is larger than %d bytes", u.maxBytes))
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", domain.NewValidationError(fmt.Sprintf("%s is not an image (%s)", file.Name, mime.String()))
	}

	key := StorageKey(u.newID(), file.Name, mime.Extension())
	err = u.store.Upload(ctx, key, mime.String(), bytes.NewReader(data))
	if err != nil {
		return "", domain.NewUploadError("failed to upload image", err)
	}
	return u.store.PublicURL(key), nil
}

// StorageKey is "<id>.<ext>", ext taken from the file name and falling back
// to the sniffed extension.
func StorageKey(id string, fileName string, sniffedExt string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		ext = strings.TrimPrefix(sniffedExt, ".")
	}
	if ext == "" {
		return id
	}
	return id + "." + ext
}
