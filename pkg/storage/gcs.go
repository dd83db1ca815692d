package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore writes objects to a Google Cloud Storage bucket
type GCSStore struct {
	client     *storage.Client
	bucketName string
}

// NewGCSStore creates a bucket-backed store. An empty credentialsFile falls
// back to application default credentials.
func NewGCSStore(ctx context.Context, bucketName, credentialsFile string) (*GCSStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("GCS bucket name is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &GCSStore{client: client, bucketName: bucketName}, nil
}

// Store uploads the content under objectPath and returns its public URL
func (s *GCSStore) Store(ctx context.Context, objectPath string, content io.Reader, contentType string) (string, error) {
	writer := s.client.Bucket(s.bucketName).Object(objectPath).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(writer, content); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to copy photo to GCS object %s: %w", objectPath, err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", objectPath, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, (&url.URL{Path: objectPath}).EscapedPath()), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
