package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"path"
	"strings"
	"time"

	"potluck/internal/models"
	"potluck/internal/storage"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultUploadMaxSizeKB = 2048
	uploadPrefix           = "posts/"
)

// imageFormats maps decoder format names to stored file extensions.
var imageFormats = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

type UploadImageInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// UploadResult describes a stored image.
type UploadResult struct {
	Path     string `json:"path"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type UploadService struct {
	store    storage.Store
	maxBytes int64
	now      func() time.Time
}

func NewUploadService(store storage.Store, maxSizeKB int) *UploadService {
	if maxSizeKB <= 0 {
		maxSizeKB = DefaultUploadMaxSizeKB
	}
	return &UploadService{
		store:    store,
		maxBytes: int64(maxSizeKB) * 1024,
		now:      time.Now,
	}
}

// UploadImage verifies that the content decodes as a supported image and
// stores it under posts/<unix>_<uuid>.<ext>.
func (s *UploadService) UploadImage(ctx context.Context, in UploadImageInput) (*UploadResult, error) {
	if len(in.Content) == 0 {
		return nil, fileError("The file field is required.")
	}
	if int64(len(in.Content)) > s.maxBytes {
		return nil, fileError(fmt.Sprintf("The file may not be greater than %d kilobytes.", s.maxBytes/1024))
	}

	sniffed := http.DetectContentType(in.Content)
	if !strings.HasPrefix(sniffed, "image/") {
		return nil, fileError("The file must be an image.")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return nil, fileError("The file must be an image.")
	}
	ext, ok := imageFormats[format]
	if !ok {
		return nil, fileError("The file must be a file of type: jpeg, png, gif, webp.")
	}

	name := fmt.Sprintf("%d_%s.%s", s.now().Unix(), uuid.NewString(), ext)
	key := uploadPrefix + name
	url, err := s.store.Put(ctx, key, bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &UploadResult{Path: key, URL: url, Filename: name}, nil
}

// DeleteImage removes a previously uploaded image. Only keys under posts/ are
// accepted.
func (s *UploadService) DeleteImage(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.NewFieldValidationError(map[string][]string{"path": {"The path field is required."}})
	}
	clean := path.Clean(key)
	if clean != key || !strings.HasPrefix(clean, uploadPrefix) || clean == uploadPrefix {
		return models.NewFieldValidationError(map[string][]string{"path": {"The path is invalid."}})
	}

	if err := s.store.Delete(ctx, clean); err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return models.NewFieldValidationError(map[string][]string{"path": {"The path is invalid."}})
		}
		return models.NewInternalError(err)
	}
	return nil
}

func fileError(msg string) error {
	return models.NewFieldValidationError(map[string][]string{"file": {msg}})
}
