package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/logger"
	"github.com/xiltepin/InsuranceAIPOCs/internal/port"
)

// ImageUploadInput is the DTO for image upload requests.
type ImageUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// UploadService validates incoming images and stages them on local disk for
// the recognition engine.
type UploadService interface {
	Save(ctx context.Context, input ImageUploadInput) (*domain.UploadedImage, error)
	// Release removes the staged file unless the server keeps uploads.
	Release(img *domain.UploadedImage)
}

type uploadService struct {
	cfg     *config.UploadConfig
	s3cfg   *config.S3Config
	storage port.ObjectStorage
	log     *zap.Logger
	now     func() time.Time
}

// NewUploadService creates a new UploadService implementation. storage may be
// nil, in which case images are not archived.
func NewUploadService(
	cfg *config.UploadConfig,
	s3cfg *config.S3Config,
	storage port.ObjectStorage,
	log *zap.Logger,
) UploadService {
	return &uploadService{
		cfg:     cfg,
		s3cfg:   s3cfg,
		storage: storage,
		log:     logger.OrNop(log).Named("upload"),
		now:     time.Now,
	}
}

func (s *uploadService) Save(ctx context.Context, input ImageUploadInput) (*domain.UploadedImage, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	imageType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	maxBytes := s.cfg.MaxFileSizeBytes()
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, valid := domain.AllowedContentTypes[detectedType]; !valid {
		return nil, domain.ErrUnsupportedFileType
	}

	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	id := uuid.New()
	img := &domain.UploadedImage{
		ID:           id.String(),
		FileName:     id.String() + "." + ext,
		OriginalName: input.Header.Filename,
		ImageType:    imageType,
		ContentType:  detectedType,
		UploadedAt:   s.now().UTC(),
	}
	img.Path = filepath.Join(s.cfg.Dir, img.FileName)

	if err := os.MkdirAll(s.cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	size, err := writeLimited(img.Path, input.File, maxBytes)
	if err != nil {
		_ = os.Remove(img.Path)
		return nil, err
	}
	img.Size = size

	s.log.Info("image staged",
		zap.String("id", img.ID),
		zap.String("original_name", img.OriginalName),
		zap.String("content_type", img.ContentType),
		zap.Int64("size", img.Size),
	)

	if s.storage != nil {
		s.archive(ctx, img)
	}
	return img, nil
}

// writeLimited copies at most limit bytes of r into a new file at dst. The
// multipart header size is client-supplied, so the limit is enforced again here.
func writeLimited(dst string, r io.Reader, limit int64) (int64, error) {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return 0, fmt.Errorf("creating staged file: %w", err)
	}
	n, copyErr := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if copyErr != nil {
		return 0, fmt.Errorf("writing staged file: %w", copyErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("closing staged file: %w", closeErr)
	}
	if n > limit {
		return 0, domain.ErrFileTooLarge
	}
	return n, nil
}

// archive copies the staged image to object storage. Failures are logged and
// do not block recognition.
func (s *uploadService) archive(ctx context.Context, img *domain.UploadedImage) {
	f, err := os.Open(img.Path)
	if err != nil {
		s.log.Warn("archive: opening staged file", zap.String("id", img.ID), zap.Error(err))
		return
	}
	defer f.Close()

	key := path.Join(s.s3cfg.Prefix, img.UploadedAt.Format("2006/01/02"), img.FileName)
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        f,
		ContentType: img.ContentType,
		Size:        img.Size,
	})
	if err != nil {
		s.log.Warn("archive: upload failed",
			zap.String("id", img.ID),
			zap.Error(errors.Join(domain.ErrStorageUnavailable, err)),
		)
		return
	}
	img.ArchiveKey = key
	s.log.Debug("image archived", zap.String("id", img.ID), zap.String("key", key))
}

func (s *uploadService) Release(img *domain.UploadedImage) {
	if img == nil || s.cfg.KeepFiles {
		return
	}
	if err := os.Remove(img.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("removing staged file", zap.String("path", img.Path), zap.Error(err))
	}
}
