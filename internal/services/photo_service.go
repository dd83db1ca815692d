package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/pkg/logger"
	"github.com/alimgiray/familytree/pkg/metrics"
)

// ObjectStore is where uploaded photos end up
type ObjectStore interface {
	Store(ctx context.Context, objectPath string, content io.Reader, contentType string) (string, error)
}

// PhotoUpload is a photo file attached to a member form
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type PhotoService struct {
	store    ObjectStore
	maxBytes int64
	now      func() time.Time
}

func NewPhotoService(store ObjectStore, maxBytes int64) *PhotoService {
	return &PhotoService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Validate checks the upload is an image within the size limit
func (s *PhotoService) Validate(upload *PhotoUpload) error {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return models.ValidationErrors{{Field: "photo", Message: "Please upload an image file"}}
	}
	if s.maxBytes > 0 && upload.Size > s.maxBytes {
		return models.ValidationErrors{{
			Field:   "photo",
			Message: fmt.Sprintf("Image size should be less than %dMB", s.maxBytes/(1024*1024)),
		}}
	}
	return nil
}

// Upload stores the photo under users/{userID}/members and returns its URL
func (s *PhotoService) Upload(ctx context.Context, userID string, upload *PhotoUpload) (string, error) {
	objectPath := s.objectPath(userID, upload.Filename)

	url, err := s.store.Store(ctx, objectPath, upload.Content, upload.ContentType)
	if err != nil {
		metrics.PhotoUploadsTotal.WithLabelValues("failed").Inc()
		logger.WithUser(userID).WithError(err).Error("Error uploading photo")
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	metrics.PhotoUploadsTotal.WithLabelValues("ok").Inc()
	logger.WithUser(userID).WithField("path", objectPath).Info("Photo uploaded")
	return url, nil
}

// objectPath keeps names unique per user with a millisecond timestamp
func (s *PhotoService) objectPath(userID, filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = "jpg"
	}
	name := fmt.Sprintf("member_%d.%s", s.now().UnixMilli(), ext)
	return path.Join("users", userID, "members", name)
}
