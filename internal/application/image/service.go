package image

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/easymotion-api/internal/domain"
	s3infra "github.com/easymotion-api/internal/infrastructure/s3"
	"github.com/easymotion-api/internal/pkg/id"
)

const presignTTL = 15 * time.Minute

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	CourseID    string
	UploaderID  string
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*domain.CourseImage, error)
	ListByCourse(ctx context.Context, courseID string) ([]domain.CourseImage, error)
	Download(ctx context.Context, imageID string) (io.ReadCloser, *domain.CourseImage, error)
	Delete(ctx context.Context, imageID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type imageStore interface {
	Put(ctx context.Context, img *domain.CourseImage) error
	Get(ctx context.Context, imageID string) (*domain.CourseImage, error)
	ListByCourse(ctx context.Context, courseID string) ([]domain.CourseImage, error)
	Delete(ctx context.Context, imageID string) error
}

type courseStore interface {
	Get(ctx context.Context, courseID string) (*domain.Course, error)
	Update(ctx context.Context, courseID string, updates map[string]interface{}) error
}

type service struct {
	s3         objectStore
	imageRepo  imageStore
	courseRepo courseStore
}

func NewService(s3 objectStore, imageRepo imageStore, courseRepo courseStore) Service {
	return &service{s3: s3, imageRepo: imageRepo, courseRepo: courseRepo}
}

// Upload stores the picture in S3 under the course's prefix, records its
// metadata row and points the course at the new key.
func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.CourseImage, error) {
	if _, err := s.courseRepo.Get(ctx, input.CourseID); err != nil {
		return nil, err
	}
	safeName := sanitizeFilename(input.Filename)
	contentType := input.ContentType
	if contentType == "" {
		contentType = s3infra.DetectContentType(safeName)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("only image uploads are accepted: %w", domain.ErrBadRequest)
	}

	key := fmt.Sprintf("courses/%s/%s", input.CourseID, safeName)
	hasher := sha256.New()
	tee := io.TeeReader(input.Reader, hasher)
	if _, err := s.s3.Upload(ctx, key, tee, contentType); err != nil {
		return nil, err
	}

	url, err := s.s3.PresignedURL(ctx, key, presignTTL)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	img := &domain.CourseImage{
		ImageID:          id.New(),
		CourseID:         input.CourseID,
		Object:           key,
		Size:             input.Size,
		Type:             contentType,
		Name:             safeName,
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		URL:              &url,
		UploadedByUserID: input.UploaderID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.imageRepo.Put(ctx, img); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Update(ctx, input.CourseID, map[string]interface{}{"image_key": key}); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *service) ListByCourse(ctx context.Context, courseID string) ([]domain.CourseImage, error) {
	return s.imageRepo.ListByCourse(ctx, courseID)
}

func (s *service) Download(ctx context.Context, imageID string) (io.ReadCloser, *domain.CourseImage, error) {
	img, err := s.imageRepo.Get(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.s3.Download(ctx, img.Object)
	if err != nil {
		return nil, nil, err
	}
	return rc, img, nil
}

func (s *service) Delete(ctx context.Context, imageID string) error {
	img, err := s.imageRepo.Get(ctx, imageID)
	if err != nil {
		return err
	}
	if err := s.s3.Delete(ctx, img.Object); err != nil {
		return err
	}
	return s.imageRepo.Delete(ctx, imageID)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
