package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
)

const publicStorageHost = "https://storage.googleapis.com"

// CloudStorage is an ObjectStore on a Cloud Storage bucket, usually the one
// handed out by the Firebase storage client.
type CloudStorage struct {
	bucket     *storage.BucketHandle
	bucketName string
	projectID  string
}

func NewCloudStorage(bucket *storage.BucketHandle, bucketName string, projectID string) *CloudStorage {
	return &CloudStorage{
		bucket:     bucket,
		bucketName: bucketName,
		projectID:  projectID,
	}
}

// EnsureBucket creates the bucket with publicly readable objects unless it
// already exists.
func (c *CloudStorage) EnsureBucket(ctx context.Context) error {
	_, err := c.bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("failed to get bucket attrs: %w", err)
	}
	err = c.bucket.Create(ctx, c.projectID, &storage.BucketAttrs{
		PredefinedDefaultObjectACL: "publicRead",
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %v: %w", c.bucketName, err)
	}
	return nil
}

func (c *CloudStorage) Upload(ctx context.Context, key string, contentType string, r io.Reader) error {
	// Close commits whatever was written; a failed copy cancels the writer instead
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := c.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		return fmt.Errorf("failed to write object %v: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close object %v: %w", key, err)
	}
	return nil
}

func (c *CloudStorage) PublicURL(key string) string {
	return PublicObjectURL(c.bucketName, key)
}

func PublicObjectURL(bucketName string, key string) string {
	return fmt.Sprintf("%s/%s/%s", publicStorageHost, bucketName, url.PathEscape(key))
}
