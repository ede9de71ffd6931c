package services

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"storeadmin/internal/apperr"
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
	".avif": {},
}

// UploadSlot is a short-lived write authorization for one object.
type UploadSlot struct {
	PresignedURL string    `json:"presignedUrl"`
	Key          string    `json:"key"`
	PublicURL    string    `json:"publicUrl"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type UploadService struct {
	objects ObjectStore
	ttl     time.Duration
	// RandomKeys adds a uuid between timestamp and filename so identical
	// names uploaded in the same millisecond cannot collide.
	RandomKeys bool
	Now        func() time.Time
	NewID      func() string
}

func NewUploadService(objects ObjectStore, ttl time.Duration) *UploadService {
	return &UploadService{
		objects: objects,
		ttl:     ttl,
		Now:     time.Now,
		NewID:   func() string { return uuid.NewString() },
	}
}

// RequestUploadSlot signs a PUT for a new key derived from the request time
// and filename. The upload itself happens client-side and is never verified.
func (s *UploadService) RequestUploadSlot(ctx context.Context, filename, contentType string) (UploadSlot, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return UploadSlot{}, err
	}
	contentType = strings.TrimSpace(contentType)
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return UploadSlot{}, apperr.Validation("contentType", "must be an image type")
	}

	now := s.Now()
	key := s.objectKey(now, name)

	presigned, err := s.objects.PresignPut(ctx, key, contentType, s.ttl)
	if err != nil {
		log.Printf("[UPLOAD] [ERROR] presign failed for %s: %v", key, err)
		return UploadSlot{}, err
	}

	log.Printf("[UPLOAD] [INFO] upload slot issued: key=%s contentType=%s", key, contentType)
	return UploadSlot{
		PresignedURL: presigned,
		Key:          key,
		PublicURL:    s.objects.PublicURL(key),
		ExpiresAt:    now.Add(s.ttl),
	}, nil
}

func (s *UploadService) objectKey(now time.Time, name string) string {
	if s.RandomKeys {
		return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), s.NewID(), name)
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}

func cleanFilename(filename string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(filename, "\\", "/"))
	if trimmed == "" {
		return "", apperr.Validation("filename", "is required")
	}
	name := path.Base(trimmed)
	if name == "." || name == "/" || name == ".." {
		return "", apperr.Validation("filename", "is invalid")
	}

	extension := strings.ToLower(filepath.Ext(name))
	if extension == "" {
		return "", apperr.Validation("filename", "image file extension is required")
	}
	if _, ok := allowedImageExtensions[extension]; !ok {
		return "", apperr.Validation("filename", fmt.Sprintf("unsupported image type: %s", extension))
	}
	return name, nil
}
